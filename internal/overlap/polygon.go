package overlap

// polygon is a closed convex ring of vertices, counter-clockwise.
type polygon [][2]float64

// polygon returns the quad as a CCW ring.
func (q Quad) polygon() polygon {
	p := polygon{q[0], q[1], q[2], q[3]}
	if signedArea(p) < 0 {
		p[1], p[3] = p[3], p[1]
	}
	return p
}

// signedArea is the shoelace area, positive for CCW rings.
func signedArea(p polygon) float64 {
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i][0]*p[j][1] - p[j][0]*p[i][1]
	}
	return sum / 2
}

func polygonArea(p polygon) float64 {
	a := signedArea(p)
	if a < 0 {
		return -a
	}
	return a
}

// intersectionArea computes the area shared by two convex CCW polygons using
// Sutherland-Hodgman clipping of a against each edge of b.
func intersectionArea(a, b polygon) float64 {
	clipped := a
	for i := range b {
		j := (i + 1) % len(b)
		clipped = clipEdge(clipped, b[i], b[j])
		if len(clipped) == 0 {
			return 0
		}
	}
	return polygonArea(clipped)
}

// clipEdge keeps the part of p on the left of the directed edge e1->e2.
func clipEdge(p polygon, e1, e2 [2]float64) polygon {
	var out polygon
	for i := range p {
		cur := p[i]
		prev := p[(i+len(p)-1)%len(p)]

		curInside := leftOf(e1, e2, cur) >= 0
		prevInside := leftOf(e1, e2, prev) >= 0

		switch {
		case curInside && prevInside:
			out = append(out, cur)
		case curInside && !prevInside:
			out = append(out, segmentEdgeIntersection(prev, cur, e1, e2), cur)
		case !curInside && prevInside:
			out = append(out, segmentEdgeIntersection(prev, cur, e1, e2))
		}
	}
	return out
}

// leftOf is positive when pt lies left of the directed line e1->e2.
func leftOf(e1, e2, pt [2]float64) float64 {
	return (e2[0]-e1[0])*(pt[1]-e1[1]) - (e2[1]-e1[1])*(pt[0]-e1[0])
}

// segmentEdgeIntersection intersects segment p1->p2 with the infinite line
// through e1->e2. Callers only invoke it when the segment crosses the line.
func segmentEdgeIntersection(p1, p2, e1, e2 [2]float64) [2]float64 {
	dx := p2[0] - p1[0]
	dy := p2[1] - p1[1]
	ex := e2[0] - e1[0]
	ey := e2[1] - e1[1]

	denom := dx*ey - dy*ex
	if denom == 0 {
		return p2 // collinear; degenerate but closed
	}
	t := ((e1[0]-p1[0])*ey - (e1[1]-p1[1])*ex) / denom
	return [2]float64{p1[0] + t*dx, p1[1] + t*dy}
}
