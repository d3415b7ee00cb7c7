// annotations.go defines the annotation types, argument constants, and parser for the
// Rift WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @rift: that drive automatic struct injection, bind group declaration, and resource
// provider registration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the renderer to wire GPU resources without manual low-level
// plumbing.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies a Rift annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@rift:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
// Each type corresponds to a distinct pre-processor action and produces different
// fields on the resulting Annotation struct.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file, so the WGSL and host layouts can
	// never drift apart. This annotation does not produce a declaration and is
	// consumed entirely during pre-processing.
	//
	// Syntax: //@rift:include <struct_type>
	//
	// Example: //@rift:include frame_uniforms
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type, enabling
	// resource wiring to match bindings semantically instead of by string lookups.
	//
	// Syntax: //@rift:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@rift:group 0 0 storage_uniform frame frame_uniforms
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings that
	// contain raw WGSL types (textures, samplers, flat matrix arrays) which have no
	// corresponding registered struct in the pre-processor's struct registry.
	//
	// An optional binding role can be appended after the provider identity to declare the
	// semantic purpose of an individual binding within a multi-binding provider group.
	//
	// Syntax:
	//   //@rift:provider <group> <binding> <provider_identity>
	//   //@rift:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@rift:provider 1 0 material albedo_texture
	//   //@rift:provider 2 0 shadow shadow_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @rift: annotation from a WGSL shader source line.
// It carries the annotation type, its arguments, the source line number, and optional
// group/binding indices. Annotations of type AnnotationTypeBindingGroup and
// AnnotationTypeProvider are appended to the PreProcessor's declarations list for
// consumption during resource wiring.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "frame_uniforms")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "material", "shadow"), [1] = binding role (optional, e.g. "albedo_texture")
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
// Arguments fall into three categories: struct type keys (used with include and group),
// address space identifiers (used with group), and provider identity keys (used with provider).
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// These identify registered WGSL struct types. They can appear in @rift:include annotations
// (to inject the struct source) and in @rift:group annotations (as the type field, optionally
// wrapped in array<>). Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgFrameUniforms identifies the FrameUniforms struct shared by all mesh passes.
	// Source: engine/camera/assets/frame_uniforms.wgsl
	AnnotationArgFrameUniforms AnnotationArg = "frame_uniforms"

	// annotationArgVertex identifies the VertexInput struct for static (non-skinned) meshes.
	// Source: engine/model/assets/static_vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// annotationArgSkinnedVertex identifies the VertexInput struct for skinned meshes with bone influences.
	// Source: engine/model/assets/skinned_vertex.wgsl
	annotationArgSkinnedVertex AnnotationArg = "skinned_vertex"

	// AnnotationArgMeshInstance identifies the MeshInstance struct for per-instance mesh draw data.
	// Source: engine/model/assets/mesh_instance.wgsl
	AnnotationArgMeshInstance AnnotationArg = "mesh_instance"

	// AnnotationArgMaterialParams identifies the MaterialParams struct for material surface parameters.
	// Source: engine/renderer/material/assets/material_params.wgsl
	AnnotationArgMaterialParams AnnotationArg = "material_params"

	// AnnotationArgLightingParams identifies the LightingParams struct carrying the shading tunables.
	// Source: engine/renderer/shading/assets/lighting_params.wgsl
	AnnotationArgLightingParams AnnotationArg = "lighting_params"

	// AnnotationArgSpriteInstance identifies the SpriteInstance struct for per-instance UI draw data.
	// Source: engine/ui/assets/sprite_instance.wgsl
	AnnotationArgSpriteInstance AnnotationArg = "sprite_instance"

	// AnnotationArgSpriteUniform identifies the SpriteUniform struct for screen dimensions and UI scale.
	// Source: engine/ui/assets/sprite_uniform.wgsl
	AnnotationArgSpriteUniform AnnotationArg = "sprite_uniform"
)

// ── Address space arguments ────────────────────────────────────────────────────
// These specify the WGSL variable address space in @rift:group annotations.
// They map to WGSL var<> declarations. Render pipelines only ever read their
// buffers, so there is no read_write mapping.

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These identify which resource provider owns a bind group. Used in @rift:provider
// annotations and matched during draw setup to wire the correct BindGroupProvider
// for each group.

const (
	// AnnotationArgFrame identifies the per-frame provider (frame uniforms, lighting
	// params, instance buffer, bone palette).
	AnnotationArgFrame AnnotationArg = "frame"

	// AnnotationArgMaterial identifies the material provider (albedo texture array,
	// sampler, material params).
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgShadow identifies the shadow provider (shadow depth texture and
	// comparison sampler).
	AnnotationArgShadow AnnotationArg = "shadow"

	// AnnotationArgTarget identifies the offscreen target provider consumed by the
	// composite pass (color texture and sampler).
	AnnotationArgTarget AnnotationArg = "target"

	// AnnotationArgSprite identifies the sprite provider consumed by the UI pass
	// (sprite uniform, sprite instance buffer, atlas texture array and sampler).
	AnnotationArgSprite AnnotationArg = "sprite"
)

// ── Binding role arguments ─────────────────────────────────────────────────────
// These qualify individual bindings within a provider group. They appear as the
// optional fourth argument of an @rift:provider annotation, telling resource
// wiring which texture, sampler or buffer role each binding fulfils without
// relying on variable-name string matching.

const (
	// AnnotationArgAlbedoTexture identifies an albedo texture array binding.
	AnnotationArgAlbedoTexture AnnotationArg = "albedo_texture"

	// AnnotationArgAlbedoSampler identifies the sampler paired with the albedo texture.
	AnnotationArgAlbedoSampler AnnotationArg = "albedo_sampler"

	// AnnotationArgShadowTexture identifies the shadow map depth texture binding.
	AnnotationArgShadowTexture AnnotationArg = "shadow_texture"

	// AnnotationArgShadowSampler identifies the comparison sampler paired with the shadow map.
	AnnotationArgShadowSampler AnnotationArg = "shadow_sampler"

	// AnnotationArgTargetTexture identifies the offscreen color texture binding.
	AnnotationArgTargetTexture AnnotationArg = "target_texture"

	// AnnotationArgTargetSampler identifies the sampler paired with the offscreen color texture.
	AnnotationArgTargetSampler AnnotationArg = "target_sampler"

	// AnnotationArgBones identifies the flat bone matrix palette binding.
	AnnotationArgBones AnnotationArg = "bones"

	// AnnotationArgAtlasTexture identifies the UI atlas texture array binding.
	AnnotationArgAtlasTexture AnnotationArg = "atlas_texture"

	// AnnotationArgAtlasSampler identifies the sampler paired with the UI atlas.
	AnnotationArgAtlasSampler AnnotationArg = "atlas_sampler"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @rift:include and @rift:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgFrameUniforms,
	annotationArgVertex,
	annotationArgSkinnedVertex,
	AnnotationArgMeshInstance,
	AnnotationArgMaterialParams,
	AnnotationArgLightingParams,
	AnnotationArgSpriteInstance,
	AnnotationArgSpriteUniform,
}

// validAddressSpaces lists all AnnotationArg values that are accepted as address
// space arguments in @rift:group annotations. Each maps to a WGSL var<> declaration.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

// validProviderIdentities lists all AnnotationArg values that are accepted as
// provider identity arguments in @rift:provider annotations. Each maps to a
// resource provider used during draw setup wiring.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgFrame,
	AnnotationArgMaterial,
	AnnotationArgShadow,
	AnnotationArgTarget,
	AnnotationArgSprite,
}

// validBindingRoles lists all AnnotationArg values that are accepted as binding
// role qualifiers in @rift:provider annotations.
var validBindingRoles = []AnnotationArg{
	AnnotationArgAlbedoTexture,
	AnnotationArgAlbedoSampler,
	AnnotationArgShadowTexture,
	AnnotationArgShadowSampler,
	AnnotationArgTargetTexture,
	AnnotationArgTargetSampler,
	AnnotationArgBones,
	AnnotationArgAtlasTexture,
	AnnotationArgAtlasSampler,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @rift: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix. Returns
// a populated Annotation for valid annotations, or an error describing the problem for
// malformed annotations with correct prefix but invalid syntax or unknown arguments.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @rift annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @rift include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @rift include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @rift group annotation requires exactly five arguments (group number, binding number, address space, var name, struct type)", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q in @rift group annotation: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @rift group annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @rift group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @rift group annotation", lineNum, inner)
			}
		} else {
			if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
				return nil, fmt.Errorf("line %d: unknown struct type %q in @rift group annotation", lineNum, typeArg)
			}
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @rift provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, args[1], err)
		}
		bindingInt, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @rift provider annotation: %v", lineNum, args[2], err)
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @rift provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @rift provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @rift annotation type %q", lineNum, args[0])
	}
}

// FindProviderGroup returns the bind group index declared for a provider identity.
// All bindings of one provider identity share a group, so the first match wins.
//
// Parameters:
//   - declarations: the annotations returned by PreProcessor.Declarations
//   - identity: the provider identity to look up (e.g. AnnotationArgFrame)
//
// Returns:
//   - int: the group index
//   - bool: false if the identity does not appear in the declarations
func FindProviderGroup(declarations []Annotation, identity AnnotationArg) (int, bool) {
	for _, d := range declarations {
		if d.Type != AnnotationTypeProvider || d.Group == nil {
			continue
		}
		if len(d.Args) > 0 && d.Args[0] == identity {
			return *d.Group, true
		}
	}
	return 0, false
}

// FindProviderBinding returns the group and binding indices declared for a
// provider identity and binding role pair.
//
// Parameters:
//   - declarations: the annotations returned by PreProcessor.Declarations
//   - identity: the provider identity to look up (e.g. AnnotationArgShadow)
//   - role: the binding role to look up (e.g. AnnotationArgShadowTexture)
//
// Returns:
//   - group: the group index
//   - binding: the binding index
//   - ok: false if no declaration matches the pair
func FindProviderBinding(declarations []Annotation, identity, role AnnotationArg) (group, binding int, ok bool) {
	for _, d := range declarations {
		if d.Type != AnnotationTypeProvider || d.Group == nil || d.Binding == nil {
			continue
		}
		if len(d.Args) == 2 && d.Args[0] == identity && d.Args[1] == role {
			return *d.Group, *d.Binding, true
		}
	}
	return 0, 0, false
}
