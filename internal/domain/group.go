package domain

import "strconv"

// Group is an academic cohort identified by course, faculty and speciality.
type Group struct {
	ID         int64  `json:"id"`
	Course     int    `json:"course"`
	Faculty    string `json:"faculty"`
	Speciality string `json:"speciality"`
}

// Name returns "<course>_<faculty>_<speciality>".
func (g Group) Name() string {
	return strconv.Itoa(g.Course) + "_" + g.Faculty + "_" + g.Speciality
}

// ShortName returns "<course>_<speciality>".
func (g Group) ShortName() string {
	return strconv.Itoa(g.Course) + "_" + g.Speciality
}
