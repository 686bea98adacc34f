package sense

// LineOfSight reports whether nothing blocks the segment between two points.
// Hosts with a physics world plug their raycast in here.
type LineOfSight func(from, to Vec3) bool

// Vision is a cone-shaped sight sensor.
type Vision struct {
	// Range is the farthest distance the sensor sees.
	Range float64
	// FieldOfView is the full cone angle in degrees, between 0 and 360.
	FieldOfView float64
}

// InSight reports whether target is visible from head looking along forward.
// The target must be within range and inside the cone; when los is non-nil it must
// also report a clear line.
func (v Vision) InSight(head, forward, target Vec3, los LineOfSight) bool {
	toTarget := target.Sub(head)

	r := max(v.Range, 0)
	if toTarget.LenSq() > r*r {
		return false
	}

	if toTarget.LenSq() > 0 {
		if forward.LenSq() == 0 {
			return false
		}

		fov := min(max(v.FieldOfView, 0), 360)
		if forward.AngleTo(toTarget) > fov/2 {
			return false
		}
	}

	return los == nil || los(head, target)
}
