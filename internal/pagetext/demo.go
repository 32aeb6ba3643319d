package pagetext

import "github.com/benvon/focusdock/internal/models"

// DemoContent is a sample job posting used when no page text is available
const DemoContent = `
    Senior Software Engineer - Full Stack

    About the Role:
    We are looking for a Senior Software Engineer to join our growing team.
    You will be responsible for designing, developing, and maintaining our core platform.

    Requirements:
    - 5+ years of experience in software development
    - Strong proficiency in React, TypeScript, and Node.js
    - Experience with cloud platforms (AWS, GCP, or Azure)
    - Knowledge of database systems (PostgreSQL, MongoDB)
    - Familiarity with CI/CD pipelines and DevOps practices
    - Excellent problem-solving and communication skills
    - Experience with Agile methodologies

    Nice to Have:
    - Experience with microservices architecture
    - Knowledge of Docker and Kubernetes
    - GraphQL experience
    - Machine learning or AI background

    Benefits:
    - Competitive salary and equity
    - Health, dental, and vision insurance
    - Flexible work arrangements
    - Professional development budget
    - Unlimited PTO

    We are an equal opportunity employer and value diversity at our company.
    Join us in building the future of technology!
`

// DemoPage wraps DemoContent as page content
func DemoPage() models.PageContent {
	return models.PageContent{
		Text:  clean(DemoContent),
		Title: "Senior Software Engineer - Full Stack",
		URL:   "focusdock://demo",
	}
}
