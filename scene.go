package silhouette

// NodeID is a non-owning handle to a node in an externally owned scene.
// The zero value refers to no node.
type NodeID uint32

// SceneGraph is the read/attribute access the engine needs to scene nodes.
// The engine never creates or destroys nodes through it.
type SceneGraph interface {
	// WorldMatrix returns the node's world transform. ok is false for an
	// unknown node.
	WorldMatrix(id NodeID) (m Mat4, ok bool)
	// Attribute returns a string attribute of the node.
	Attribute(id NodeID, key string) (value string, ok bool)
	// SetAttribute stores a string attribute. It reports false for an
	// unknown node.
	SetAttribute(id NodeID, key, value string) bool
}

// CameraResolver supplies the active camera, if any.
type CameraResolver interface {
	ActiveCamera() (Camera, bool)
}

// sceneNode is one entry of the in-memory Scene.
type sceneNode struct {
	parent   NodeID
	local    Transform
	attrs    map[string]string
	children []NodeID
}

// Scene is a minimal in-memory node registry with a transform hierarchy and
// string attributes. It implements SceneGraph and CameraResolver for hosts
// without a scene framework of their own, and for tests.
type Scene struct {
	nodes  map[NodeID]*sceneNode
	nextID NodeID
	camera Camera
}

// NewScene creates an empty scene with no camera.
func NewScene() *Scene {
	return &Scene{nodes: make(map[NodeID]*sceneNode)}
}

// AddNode adds a node under parent (0 for a top-level node) and returns its
// handle. An unknown parent makes the node top-level.
func (s *Scene) AddNode(parent NodeID, t Transform) NodeID {
	s.nextID++
	id := s.nextID
	if p, ok := s.nodes[parent]; ok {
		p.children = append(p.children, id)
	} else {
		parent = 0
	}
	s.nodes[id] = &sceneNode{parent: parent, local: t}
	return id
}

// RemoveNode removes a node and its subtree. Handles held elsewhere become
// stale; lookups on them report not found.
func (s *Scene) RemoveNode(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	if p, ok := s.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	s.removeSubtree(id)
}

func (s *Scene) removeSubtree(id NodeID) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		s.removeSubtree(c)
	}
	delete(s.nodes, id)
}

// Has reports whether id refers to a live node.
func (s *Scene) Has(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// SetTransform replaces a node's local transform.
func (s *Scene) SetTransform(id NodeID, t Transform) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	n.local = t
	return true
}

// Transform returns a node's local transform.
func (s *Scene) Transform(id NodeID) (Transform, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Transform{}, false
	}
	return n.local, true
}

// WorldMatrix composes the local transforms from the root down to id.
func (s *Scene) WorldMatrix(id NodeID) (Mat4, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return IdentityMat4, false
	}
	m := n.local.Matrix()
	for p := n.parent; p != 0; {
		pn, ok := s.nodes[p]
		if !ok {
			break
		}
		m = pn.local.Matrix().Mul(m)
		p = pn.parent
	}
	return m, true
}

// Attribute returns a string attribute of a node.
func (s *Scene) Attribute(id NodeID, key string) (string, bool) {
	n, ok := s.nodes[id]
	if !ok || n.attrs == nil {
		return "", false
	}
	v, ok := n.attrs[key]
	return v, ok
}

// SetAttribute stores a string attribute on a node.
func (s *Scene) SetAttribute(id NodeID, key, value string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
	return true
}

// RemoveAttribute deletes a string attribute from a node.
func (s *Scene) RemoveAttribute(id NodeID, key string) {
	if n, ok := s.nodes[id]; ok {
		delete(n.attrs, key)
	}
}

// SetCamera sets the active camera. Pass nil to leave the scene without one.
func (s *Scene) SetCamera(c Camera) {
	s.camera = c
}

// ActiveCamera returns the active camera.
func (s *Scene) ActiveCamera() (Camera, bool) {
	if s.camera == nil {
		return nil, false
	}
	return s.camera, true
}
