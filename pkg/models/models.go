package models

// DegreeStructure is the curriculum of one degree as listed on its catalog page
type DegreeStructure struct {
	DegreeTitle string `json:"degree_title"`
	Years       []Year `json:"years"`
}

// Year groups the semesters of one academic year
type Year struct {
	Name      string     `json:"name"`
	Semesters []Semester `json:"semesters"`
}

// Semester groups the subjects taught in one term
type Semester struct {
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects"`
}

// Subject is a single course. Credits is kept verbatim from the page.
type Subject struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Credits string  `json:"credits"`
	PDFURL  *string `json:"pdf_url"`
}

// NewDegreeStructure creates an empty structure with the given title
func NewDegreeStructure(title string) *DegreeStructure {
	return &DegreeStructure{DegreeTitle: title, Years: []Year{}}
}

// NewYear creates a year with no semesters
func NewYear(name string) Year {
	return Year{Name: name, Semesters: []Semester{}}
}

// NewSemester creates a semester with no subjects
func NewSemester(name string) Semester {
	return Semester{Name: name, Subjects: []Subject{}}
}

// HasPDF reports whether a guide link was found for the subject
func (s Subject) HasPDF() bool {
	return s.PDFURL != nil && *s.PDFURL != ""
}

// TotalSubjects counts subjects across all years and semesters
func (d *DegreeStructure) TotalSubjects() int {
	total := 0
	for _, y := range d.Years {
		for _, s := range y.Semesters {
			total += len(s.Subjects)
		}
	}
	return total
}

// TotalSemesters counts semesters across all years
func (d *DegreeStructure) TotalSemesters() int {
	total := 0
	for _, y := range d.Years {
		total += len(y.Semesters)
	}
	return total
}

// PDFCount counts subjects that link a guide PDF
func (d *DegreeStructure) PDFCount() int {
	count := 0
	_ = d.Walk(func(_ *Year, _ *Semester, subj *Subject) error {
		if subj.HasPDF() {
			count++
		}
		return nil
	})
	return count
}

// Walk visits every subject in document order. It stops at the first error
// returned by fn and returns it.
func (d *DegreeStructure) Walk(fn func(year *Year, semester *Semester, subject *Subject) error) error {
	for yi := range d.Years {
		year := &d.Years[yi]
		for si := range year.Semesters {
			semester := &year.Semesters[si]
			for ji := range semester.Subjects {
				if err := fn(year, semester, &semester.Subjects[ji]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Normalized returns a copy in which every nil slice is replaced by an empty
// one, so the JSON form always carries [] rather than null.
func (d *DegreeStructure) Normalized() *DegreeStructure {
	out := &DegreeStructure{DegreeTitle: d.DegreeTitle, Years: make([]Year, 0, len(d.Years))}
	for _, y := range d.Years {
		year := Year{Name: y.Name, Semesters: make([]Semester, 0, len(y.Semesters))}
		for _, s := range y.Semesters {
			sem := Semester{Name: s.Name, Subjects: make([]Subject, 0, len(s.Subjects))}
			sem.Subjects = append(sem.Subjects, s.Subjects...)
			year.Semesters = append(year.Semesters, sem)
		}
		out.Years = append(out.Years, year)
	}
	return out
}
