package animation

import (
	"github.com/Faultbox/gltf-viewer/internal/pointer"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// Disjoint returns, for every animation, the indices of the other animations whose
// channels share no target property with it. Channels with pointers that do not
// compile are keyed by their raw path.
func Disjoint(anims []*scene.Animation) [][]int {
	targets := make([]map[string]struct{}, len(anims))
	for i, a := range anims {
		set := make(map[string]struct{}, len(a.Channels))
		for _, c := range a.Channels {
			set[targetKey(c.Pointer)] = struct{}{}
		}
		targets[i] = set
	}

	result := make([][]int, len(anims))
	for i := range anims {
		result[i] = []int{}
		for k := range anims {
			if i != k && !overlaps(targets[i], targets[k]) {
				result[i] = append(result[i], k)
			}
		}
	}
	return result
}

func targetKey(path string) string {
	t, err := pointer.Compile(path)
	if err != nil {
		return path
	}
	return t.Key()
}

func overlaps(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// Compatible reports whether animations i and k may play together.
func Compatible(disjoint [][]int, i, k int) bool {
	return contains(disjoint, i, k) && contains(disjoint, k, i)
}

func contains(disjoint [][]int, i, k int) bool {
	if i < 0 || i >= len(disjoint) {
		return false
	}
	for _, j := range disjoint[i] {
		if j == k {
			return true
		}
	}
	return false
}
