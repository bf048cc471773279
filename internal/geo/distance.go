package geo

import "math"

// EarthRadiusKm is the mean radius of the spherical earth used by Distance.
const EarthRadiusKm = 6371.0

// Distance returns the great-circle distance between two points in
// kilometers, using the haversine formula. The result is approximate because
// the earth's radius varies between 6356.752 km and 6378.137 km.
func Distance(p1, p2 Point) (float64, error) {
	if err := ValidateLocation(p1.Lat, p1.Lng); err != nil {
		return 0, err
	}
	if err := ValidateLocation(p2.Lat, p2.Lng); err != nil {
		return 0, err
	}
	return haversine(p1, p2), nil
}

func haversine(p1, p2 Point) float64 {
	latDelta := DegreesToRadians(p2.Lat - p1.Lat)
	lngDelta := DegreesToRadians(p2.Lng - p1.Lng)

	a := math.Sin(latDelta/2)*math.Sin(latDelta/2) +
		math.Cos(DegreesToRadians(p1.Lat))*math.Cos(DegreesToRadians(p2.Lat))*
			math.Sin(lngDelta/2)*math.Sin(lngDelta/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
