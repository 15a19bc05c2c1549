package portal

// SeedJobs returns the static job listings the portal ships with.
func SeedJobs() []*Job {
	return []*Job{
		{
			ID:          1,
			Title:       "Software Engineer Intern",
			Company:     "Innovatech Solutions",
			Location:    "Bengaluru",
			Type:        "Internship",
			Description: "Work with a product team on backend services powering our analytics platform. You will ship production code from week one under the guidance of a senior mentor.",
			Responsibilities: []string{
				"Build and maintain REST APIs",
				"Write unit and integration tests",
				"Participate in code reviews and sprint ceremonies",
			},
			Requirements: []string{
				"Strong fundamentals in data structures and algorithms",
				"Experience with Go, Java, or Python",
				"Familiarity with relational databases",
			},
		},
		{
			ID:          2,
			Title:       "Data Analyst",
			Company:     "Quantifi Labs",
			Location:    "Remote",
			Type:        "Full-time",
			Description: "Turn raw product and market data into dashboards and recommendations for business stakeholders.",
			Responsibilities: []string{
				"Design and maintain reporting pipelines",
				"Present findings to non-technical stakeholders",
				"Own data quality checks for your domains",
			},
			Requirements: []string{
				"Proficiency in SQL and spreadsheet tooling",
				"Working knowledge of Python or R",
				"Strong written communication",
			},
		},
		{
			ID:          3,
			Title:       "Frontend Developer",
			Company:     "PixelForge Studios",
			Location:    "Pune",
			Type:        "Full-time",
			Description: "Build accessible, fast user interfaces for our design collaboration suite.",
			Responsibilities: []string{
				"Implement UI components from design specs",
				"Profile and fix rendering performance issues",
				"Collaborate with designers on interaction details",
			},
			Requirements: []string{
				"Solid JavaScript/TypeScript skills",
				"Experience with a modern component framework",
				"An eye for layout and typography",
			},
		},
		{
			ID:          4,
			Title:       "Cloud Operations Engineer",
			Company:     "Stratus Systems",
			Location:    "Hyderabad",
			Type:        "Full-time",
			Description: "Keep our multi-region Kubernetes estate healthy and cheap. On-call rotation with real ownership of the platform roadmap.",
			Responsibilities: []string{
				"Automate provisioning and deployment workflows",
				"Improve observability and alerting coverage",
				"Run capacity and cost reviews",
			},
			Requirements: []string{
				"Experience with Linux and containers",
				"Scripting ability in Bash, Python, or Go",
				"Understanding of networking basics",
			},
		},
	}
}

// SeedUsers returns the accounts available before anyone registers.
func SeedUsers() []*User {
	return []*User{
		{ID: 1, Name: "Asha Pillai", Email: "admin@placement.edu", Password: "admin123", Role: RoleAdmin},
		{ID: 2, Name: "Rohan Mehta", Email: "rohan@student.edu", Password: "student123", Role: RoleStudent, Department: "Computer Science"},
		{ID: 3, Name: "Priya Nair", Email: "priya@student.edu", Password: "student123", Role: RoleStudent, Department: "Electronics"},
		{ID: 4, Name: "Arjun Singh", Email: "arjun@student.edu", Password: "student123", Role: RoleStudent, Department: "Mechanical"},
	}
}
