package gltfio

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// Extension names handled outside materials.
const (
	ExtLightsPunctual   = "KHR_lights_punctual"
	ExtAnimationPointer = "KHR_animation_pointer"
	ExtNodeVisibility   = "KHR_node_visibility"
	ExtMeshInstancing   = "EXT_mesh_gpu_instancing"
	ExtPhysicsBodies    = "KHR_physics_rigid_bodies"
	ExtImplicitShapes   = "KHR_implicit_shapes"
	ExtMeshQuantization = "KHR_mesh_quantization"
	ExtTextureWebP      = "EXT_texture_webp"
)

// decodeExt decodes extension name into v. Unregistered extensions arrive as
// raw JSON; registered ones are re-encoded.
func decodeExt(exts gltf.Extensions, name string, v any) bool {
	raw, ok := exts[name]
	if !ok || raw == nil {
		return false
	}
	var data []byte
	switch r := raw.(type) {
	case json.RawMessage:
		data = r
	case []byte:
		data = r
	default:
		var err error
		if data, err = json.Marshal(r); err != nil {
			return false
		}
	}
	return json.Unmarshal(data, v) == nil
}

type lightsDocExt struct {
	Lights []struct {
		Name      string      `json:"name"`
		Type      string      `json:"type"`
		Color     *[3]float32 `json:"color"`
		Intensity *float32    `json:"intensity"`
		Range     *float32    `json:"range"`
		Spot      *struct {
			InnerConeAngle *float32 `json:"innerConeAngle"`
			OuterConeAngle *float32 `json:"outerConeAngle"`
		} `json:"spot"`
	} `json:"lights"`
}

type lightNodeExt struct {
	Light *int `json:"light"`
}

type visibilityExt struct {
	Visible *bool `json:"visible"`
}

type instancingExt struct {
	Attributes map[string]uint32 `json:"attributes"`
}

type pointerExt struct {
	Pointer string `json:"pointer"`
}

type shapesDocExt struct {
	Shapes []struct {
		Type string `json:"type"`
		Box  *struct {
			Size [3]float32 `json:"size"`
		} `json:"box"`
		Sphere *struct {
			Radius float32 `json:"radius"`
		} `json:"sphere"`
		Capsule *struct {
			Height       float32 `json:"height"`
			RadiusTop    float32 `json:"radiusTop"`
			RadiusBottom float32 `json:"radiusBottom"`
		} `json:"capsule"`
		Cylinder *struct {
			Height       float32 `json:"height"`
			RadiusTop    float32 `json:"radiusTop"`
			RadiusBottom float32 `json:"radiusBottom"`
		} `json:"cylinder"`
	} `json:"shapes"`
}

type physicsDocExt struct {
	CollisionFilters []struct {
		CollisionSystems      []string `json:"collisionSystems"`
		CollideWithSystems    []string `json:"collideWithSystems"`
		NotCollideWithSystems []string `json:"notCollideWithSystems"`
	} `json:"collisionFilters"`
}

type geometry struct {
	Shape      *int  `json:"shape"`
	Mesh       *int  `json:"mesh"`
	ConvexHull bool  `json:"convexHull"`
	Node       *int  `json:"node"`
	Nodes      []int `json:"nodes"`
}

type physicsNodeExt struct {
	Motion *struct {
		IsKinematic     bool        `json:"isKinematic"`
		Mass            *float32    `json:"mass"`
		LinearVelocity  *[3]float32 `json:"linearVelocity"`
		AngularVelocity *[3]float32 `json:"angularVelocity"`
		GravityFactor   *float32    `json:"gravityFactor"`
	} `json:"motion"`
	Collider *struct {
		Geometry        geometry `json:"geometry"`
		CollisionFilter *int     `json:"collisionFilter"`
	} `json:"collider"`
	Trigger *struct {
		Geometry        *geometry `json:"geometry"`
		Nodes           []int     `json:"nodes"`
		CollisionFilter *int      `json:"collisionFilter"`
	} `json:"trigger"`
}

type textureTransformExt struct {
	Offset   *[2]float32 `json:"offset"`
	Rotation *float32    `json:"rotation"`
	Scale    *[2]float32 `json:"scale"`
	TexCoord *int        `json:"texCoord"`
}

type webpExt struct {
	Source *int `json:"source"`
}
