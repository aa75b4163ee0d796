// Package geometry computes areas, perimeters, centroids, bounding boxes
// and representative centers for document entities.
//
// Every function answers with an explicit ok flag instead of an error:
// geometry that cannot be reduced to the requested quantity (an open
// polyline's area, a degenerate polygon's centroid, a hatch without a
// precomputed area) is simply absent. Non-finite intermediate values are
// treated the same way.
//
// Centroid and Center are intentionally different. Centroid is the
// area-weighted center of a closed polygon. Center is the cheap position
// used by spatial queries: the insertion point of a text, the mean of a
// polyline's vertices, the midpoint of a line, the center of a circle.
package geometry
