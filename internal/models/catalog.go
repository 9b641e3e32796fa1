package models

// Courses lists the programmes an enquiry may name, in display order.
var Courses = []string{
	"B.E.",
	"B.E. (Lateral Entry)",
	"B.Tech.",
	"B.Tech. (Lateral Entry)",
	"B.Arch.",
	"M.E.",
	"MBA",
	"MCA",
	"Ph.D.",
}

// CourseBranches maps each course to the branches legal within it.
var CourseBranches = map[string][]string{
	"B.E.": {
		"Aeronautical Engineering",
		"Biomedical Engineering",
		"Civil Engineering",
		"Computer Science & Engineering",
		"CSE (Artificial Intelligence and Machine Learning)",
		"Computer Science & Engineering (Cyber Security)",
		"Electrical & Electronics Engineering",
		"Electronics & Communication Engineering",
		"Mechanical Engineering",
	},
	"B.E. (Lateral Entry)": {
		"Aeronautical Engineering",
		"Biomedical Engineering",
		"Civil Engineering",
		"Computer Science & Engineering",
		"CSE (Artificial Intelligence and Machine Learning)",
		"Computer Science & Engineering (Cyber Security)",
		"Electrical & Electronics Engineering",
		"Electronics & Communication Engineering",
		"Mechanical Engineering",
	},
	"B.Tech.": {
		"Artificial Intelligence and Data Science",
		"Biotechnology",
		"Chemical Engineering",
		"Computer Science and Business Systems",
		"Information Technology",
	},
	"B.Tech. (Lateral Entry)": {
		"Artificial Intelligence and Data Science",
		"Biotechnology",
		"Chemical Engineering",
		"Computer Science and Business Systems",
		"Information Technology",
	},
	"B.Arch.": {
		"Architecture",
	},
	"M.E.": {
		"Communication Systems",
		"Computer Science and Engineering",
		"Engineering Design",
		"Power Systems Engineering",
		"Structural Engineering",
	},
	"MBA": {
		"MBA (Full Time)",
		"MBA (Part Time)",
		"MBA – Logistics and Supply Chain Management",
	},
	"MCA": {
		"Master of Computer Applications",
	},
	"Ph.D.": {
		"Computer Science and Engineering",
		"Electronics & Communication Engineering",
		"Mechanical Engineering",
		"Chemistry",
		"Physics",
	},
}

// ValidCourse reports whether the course is part of the catalog.
func ValidCourse(course string) bool {
	_, ok := CourseBranches[course]
	return ok
}

// ValidCourseBranch reports whether the branch is legal within the course.
func ValidCourseBranch(course, branch string) bool {
	branches, ok := CourseBranches[course]
	if !ok {
		return false
	}
	for _, b := range branches {
		if b == branch {
			return true
		}
	}
	return false
}
