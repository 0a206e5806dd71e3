package resume

// Document is the structured body of a resume, stored as a single JSONB value.
// Array fields always marshal as arrays, never null; Normalize enforces this
// before any document is persisted or serialized.
type Document struct {
	ProfessionalSummary string       `json:"professional_summary"`
	Skills              []string     `json:"skills"`
	PersonalInfo        PersonalInfo `json:"personal_info"`
	Experience          []Experience `json:"experience"`
	Education           []Education  `json:"education"`
	Projects            []Project    `json:"projects"`
}

// PersonalInfo holds the contact block rendered at the top of a resume.
type PersonalInfo struct {
	Image      string `json:"image"`
	FullName   string `json:"full_name"`
	Profession string `json:"profession"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	LinkedIn   string `json:"linkedin"`
	Website    string `json:"website"`
}

// Experience is a single employment entry. Dates use MM/YYYY.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
	IsCurrent   bool   `json:"is_current"`
}

// Education is a single education entry.
type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	Field          string `json:"field"`
	GraduationDate string `json:"graduation_date"`
	GPA            string `json:"gpa"`
}

// Project is a single project entry.
type Project struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Normalize replaces nil slices with empty ones so array fields serialize as [].
func (d *Document) Normalize() {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
}
