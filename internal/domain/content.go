package domain

import "time"

// Collection names of the documents kept in the content store.
const (
	CollectionSkills   = "skills"
	CollectionProjects = "projects"
)

// Skill is a single entry inside a skill category.
// Icon is nil when absent, so an explicit "" is kept.
type Skill struct {
	Name string  `json:"name" validate:"required"`
	Icon *string `json:"icon,omitempty"`
}

// SkillCategory groups skills under a label.
type SkillCategory struct {
	ID     string  `json:"id" validate:"required"`
	Label  string  `json:"label" validate:"required"`
	Skills []Skill `json:"skills" validate:"dive"`
}

// SkillsDocument is the persisted shape of the skills collection.
type SkillsDocument struct {
	Categories []SkillCategory `json:"categories" validate:"dive"`
}

// Normalize replaces nil slices with empty ones so the document encodes as arrays.
func (d *SkillsDocument) Normalize() {
	if d.Categories == nil {
		d.Categories = []SkillCategory{}
	}
	for i := range d.Categories {
		if d.Categories[i].Skills == nil {
			d.Categories[i].Skills = []Skill{}
		}
	}
}

// ImageFit controls how a project image is scaled in its card.
type ImageFit string

const (
	ImageFitContain ImageFit = "contain"
	ImageFitCover   ImageFit = "cover"
)

// Project is one entry of the projects collection.
// IDs are generated client-side from the current time. Omitted optional
// fields are stored in canonical form: "" for strings, [] for technologies.
type Project struct {
	ID           string   `json:"id" validate:"required"`
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	ImageFit     ImageFit `json:"imageFit" validate:"required,oneof=contain cover"`
	ImageBg      string   `json:"imageBg"`
	Technologies []string `json:"technologies"`
	DemoLink     string   `json:"demoLink"`
	CodeLink     string   `json:"codeLink"`
}

// NormalizeProjects replaces nil slices with empty ones so the list encodes as arrays.
func NormalizeProjects(projects []Project) []Project {
	if projects == nil {
		return []Project{}
	}
	for i := range projects {
		if projects[i].Technologies == nil {
			projects[i].Technologies = []string{}
		}
	}
	return projects
}

// Document is a stored collection: its raw JSON body and a revision counter
// incremented on every write.
type Document struct {
	Name      string
	Body      []byte
	Revision  int64
	UpdatedAt time.Time
}
