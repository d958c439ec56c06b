package pose

// Trajectory is an ordered sequence of global poses, one per frame.
type Trajectory []Pose

// RelativeTrajectory is an ordered sequence of frame-to-frame motions:
// element i is the motion from frame i to frame i+1.
type RelativeTrajectory []Pose

// ToGlobal chains the relative motions into a global trajectory rooted
// at the identity. The result has len(rt)+1 poses.
func (rt RelativeTrajectory) ToGlobal() Trajectory {
	global := make(Trajectory, 0, len(rt)+1)
	current := Identity()
	global = append(global, current)
	for _, rel := range rt {
		current = current.Compose(rel)
		global = append(global, current)
	}
	return global
}
