// Package curriculum holds the bundled reference data: the default
// twelve-month study plan per class level and the static ordered chapter
// lists used for progress tracking. Topic labels in the plan and entries in
// the static lists must be authored consistently; a label that matches no
// static entry simply reports as pending.
package curriculum

import (
	"strings"

	"github.com/nstclasses/tutor-api/model"
)

// SubjectIDs maps display subject names to internal subject ids as used in
// user progress records
var SubjectIDs = map[string]string{
	"Maths":          "math",
	"Mathematics":    "math",
	"Physics":        "physics",
	"Chemistry":      "chemistry",
	"Biology":        "biology",
	"Science":        "science",
	"Social Science": "sst",
	"History":        "history",
	"Geography":      "geography",
	"Civics":         "polity",
	"Economics":      "economics",
	"English":        "english",
	"Hindi":          "hindi",
}

// subjectIDScanOrder fixes the fallback scan order so a more specific name
// wins over one it contains ("Social Science" before "Science")
var subjectIDScanOrder = []string{
	"Social Science",
	"Mathematics",
	"Maths",
	"Physics",
	"Chemistry",
	"Biology",
	"Science",
	"History",
	"Geography",
	"Civics",
	"Economics",
	"English",
	"Hindi",
}

// subjectNameByID maps internal ids back to the subject names used in
// StaticSyllabus keys
var subjectNameByID = map[string]string{
	"math":      "Mathematics",
	"physics":   "Physics",
	"chemistry": "Chemistry",
	"biology":   "Biology",
	"science":   "Science",
	"sst":       "Social Science",
	"history":   "History",
	"geography": "Geography",
	"polity":    "Civics",
	"economics": "Economics",
	"english":   "English",
	"hindi":     "Hindi",
}

// SubjectIDFor resolves a display label to the internal progress key: exact
// table hit first, then the first known name contained in the label, then
// the lowercased label itself. Plan labels are free-form, so "Advanced
// Maths" still lands on "math" and an unlisted subject keys progress under
// its own lowercased name.
func SubjectIDFor(label string) string {
	if id, ok := SubjectIDs[label]; ok {
		return id
	}
	for _, name := range subjectIDScanOrder {
		if strings.Contains(label, name) {
			return SubjectIDs[name]
		}
	}
	return strings.ToLower(label)
}

// StaticListSubject returns the subject name used in StaticSyllabus keys for
// a resolved subject id, falling back to the display label for unknown ids
func StaticListSubject(id, label string) string {
	if name, ok := subjectNameByID[id]; ok {
		return name
	}
	return label
}

// StaticSyllabus maps "<board>-<class>-<subject>" to the ordered chapter
// list of that course. A student whose current chapter index is beyond a
// chapter's position has completed it.
var StaticSyllabus = map[string][]string{
	"CBSE-10-Mathematics": {
		"Real Numbers",
		"Polynomials",
		"Pair of Linear Equations in Two Variables",
		"Quadratic Equations",
		"Arithmetic Progressions",
		"Triangles",
		"Coordinate Geometry",
		"Introduction to Trigonometry",
		"Some Applications of Trigonometry",
		"Circles",
		"Areas Related to Circles",
		"Surface Areas and Volumes",
		"Statistics",
		"Probability",
	},
	"CBSE-10-Science": {
		"Chemical Reactions and Equations",
		"Acids, Bases and Salts",
		"Metals and Non-metals",
		"Carbon and its Compounds",
		"Life Processes",
		"Control and Coordination",
		"How do Organisms Reproduce",
		"Heredity and Evolution",
		"Light - Reflection and Refraction",
		"The Human Eye and the Colourful World",
		"Electricity",
		"Magnetic Effects of Electric Current",
		"Our Environment",
	},
	"CBSE-10-Social Science": {
		"The Rise of Nationalism in Europe",
		"Nationalism in India",
		"The Making of a Global World",
		"Resources and Development",
		"Water Resources",
		"Agriculture",
		"Power Sharing",
		"Federalism",
		"Development",
		"Sectors of the Indian Economy",
	},
	"CBSE-10-English": {
		"A Letter to God",
		"Nelson Mandela: Long Walk to Freedom",
		"Two Stories about Flying",
		"From the Diary of Anne Frank",
		"Glimpses of India",
		"Mijbil the Otter",
		"Madam Rides the Bus",
		"The Sermon at Benares",
		"The Proposal",
	},
	"CBSE-9-Mathematics": {
		"Number Systems",
		"Polynomials",
		"Coordinate Geometry",
		"Linear Equations in Two Variables",
		"Introduction to Euclid's Geometry",
		"Lines and Angles",
		"Triangles",
		"Quadrilaterals",
		"Circles",
		"Heron's Formula",
		"Surface Areas and Volumes",
		"Statistics",
	},
	"CBSE-9-Science": {
		"Matter in Our Surroundings",
		"Is Matter Around Us Pure",
		"Atoms and Molecules",
		"Structure of the Atom",
		"The Fundamental Unit of Life",
		"Tissues",
		"Motion",
		"Force and Laws of Motion",
		"Gravitation",
		"Work and Energy",
		"Sound",
		"Improvement in Food Resources",
	},
}

// months builds a MonthlySyllabus entry
func month(n int, title, desc string, subjects ...model.SubjectTopics) model.MonthlySyllabus {
	return model.MonthlySyllabus{Month: n, Title: title, Description: desc, Subjects: subjects}
}

func sub(name string, topics ...string) model.SubjectTopics {
	return model.SubjectTopics{Subject: name, Topics: topics}
}

// DefaultPlan is the bundled study plan keyed by class level. Administrators
// may replace a class's plan; the replacement is stored as an override and
// the bundled copy stays untouched.
var DefaultPlan = map[string][]model.MonthlySyllabus{
	"10": {
		month(1, "April - Foundation", "Session kickoff",
			sub("Maths", "Real Numbers", "Polynomials"),
			sub("Science", "Chemical Reactions and Equations"),
			sub("English", "A Letter to God")),
		month(2, "May - Building Blocks", "",
			sub("Maths", "Pair of Linear Equations in Two Variables"),
			sub("Science", "Acids, Bases and Salts"),
			sub("Social Science", "The Rise of Nationalism in Europe")),
		month(3, "June - Core Concepts", "",
			sub("Maths", "Quadratic Equations"),
			sub("Science", "Metals and Non-metals"),
			sub("English", "Nelson Mandela: Long Walk to Freedom")),
		month(4, "July - Momentum", "",
			sub("Maths", "Arithmetic Progressions", "Triangles"),
			sub("Science", "Carbon and its Compounds"),
			sub("Social Science", "Nationalism in India")),
		month(5, "August - Midway Push", "",
			sub("Maths", "Coordinate Geometry"),
			sub("Science", "Life Processes"),
			sub("English", "Two Stories about Flying")),
		month(6, "September - Half-Yearly Prep", "Revision and exams",
			sub("Maths", "Introduction to Trigonometry"),
			sub("Science", "Control and Coordination"),
			sub("Social Science", "Resources and Development")),
		month(7, "October - Applications", "",
			sub("Maths", "Some Applications of Trigonometry", "Circles"),
			sub("Science", "How do Organisms Reproduce"),
			sub("English", "From the Diary of Anne Frank")),
		month(8, "November - Deep Dive", "",
			sub("Maths", "Areas Related to Circles"),
			sub("Science", "Heredity and Evolution", "Light - Reflection and Refraction"),
			sub("Social Science", "Power Sharing")),
		month(9, "December - Consolidation", "",
			sub("Maths", "Surface Areas and Volumes"),
			sub("Science", "The Human Eye and the Colourful World", "Electricity"),
			sub("English", "Glimpses of India")),
		month(10, "January - Final Stretch", "",
			sub("Maths", "Statistics"),
			sub("Science", "Magnetic Effects of Electric Current"),
			sub("Social Science", "Federalism", "Development")),
		month(11, "February - Full Revision", "Complete syllabus revision",
			sub("Maths", "Probability"),
			sub("Science", "Our Environment"),
			sub("English", "The Proposal")),
		month(12, "March - Board Exams", "Mock tests and board exams",
			sub("Maths", "Revision and Sample Papers"),
			sub("Science", "Revision and Sample Papers")),
	},
	"9": {
		month(1, "April - Foundation", "Session kickoff",
			sub("Maths", "Number Systems"),
			sub("Science", "Matter in Our Surroundings")),
		month(2, "May - Building Blocks", "",
			sub("Maths", "Polynomials"),
			sub("Science", "Is Matter Around Us Pure")),
		month(3, "June - Core Concepts", "",
			sub("Maths", "Coordinate Geometry"),
			sub("Science", "Atoms and Molecules")),
		month(4, "July - Momentum", "",
			sub("Maths", "Linear Equations in Two Variables"),
			sub("Science", "Structure of the Atom")),
		month(5, "August - Midway Push", "",
			sub("Maths", "Introduction to Euclid's Geometry", "Lines and Angles"),
			sub("Science", "The Fundamental Unit of Life")),
		month(6, "September - Half-Yearly Prep", "Revision and exams",
			sub("Maths", "Triangles"),
			sub("Science", "Tissues")),
		month(7, "October - Applications", "",
			sub("Maths", "Quadrilaterals"),
			sub("Science", "Motion")),
		month(8, "November - Deep Dive", "",
			sub("Maths", "Circles"),
			sub("Science", "Force and Laws of Motion")),
		month(9, "December - Consolidation", "",
			sub("Maths", "Heron's Formula"),
			sub("Science", "Gravitation")),
		month(10, "January - Final Stretch", "",
			sub("Maths", "Surface Areas and Volumes"),
			sub("Science", "Work and Energy")),
		month(11, "February - Full Revision", "Complete syllabus revision",
			sub("Maths", "Statistics"),
			sub("Science", "Sound")),
		month(12, "March - Annual Exams", "Mock tests and final exams",
			sub("Maths", "Revision and Sample Papers"),
			sub("Science", "Improvement in Food Resources")),
	},
}

// PlanFor returns the bundled plan for a class level, falling back to class
// 10 when the level is unknown
func PlanFor(classLevel string) []model.MonthlySyllabus {
	if plan, ok := DefaultPlan[classLevel]; ok {
		return plan
	}
	return DefaultPlan["10"]
}
