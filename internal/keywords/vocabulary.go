package keywords

// Each entry is a regular expression fragment. It is wrapped in \b...\b and
// matched case-insensitively against the whole page text.

var skillPatterns = []string{
	// languages
	`javascript`, `typescript`, `python`, `java`, `c\+\+`, `c#`, `ruby`, `go`, `rust`, `php`, `swift`, `kotlin`,
	// frameworks
	`react`, `angular`, `vue`, `svelte`, `next\.?js`, `nuxt`, `node\.?js`, `express`, `fastify`,
	`django`, `flask`, `spring`, `rails`, `laravel`, `.net`, `asp\.net`,
	// styling
	`html`, `css`, `sass`, `scss`, `less`, `tailwind`, `bootstrap`, `material.?ui`,
	// data stores
	`sql`, `nosql`, `postgresql`, `mysql`, `mongodb`, `redis`, `elasticsearch`, `dynamodb`, `firebase`,
	// apis
	`rest`, `graphql`, `grpc`, `websocket`, `api`,
	// testing
	`testing`, `jest`, `mocha`, `cypress`, `selenium`, `tdd`, `bdd`,
	// data and ml
	`machine learning`, `deep learning`, `ai`, `nlp`, `computer vision`, `tensorflow`, `pytorch`,
	`data analysis`, `data science`, `statistics`, `analytics`,
}

var toolPatterns = []string{
	`git`, `github`, `gitlab`, `bitbucket`, `svn`,
	`docker`, `kubernetes`, `k8s`, `helm`, `terraform`, `ansible`,
	`jenkins`, `circleci`, `travis`,
	`aws`, `azure`, `gcp`, `google cloud`, `heroku`, `vercel`, `netlify`, `digitalocean`,
	`jira`, `confluence`, `trello`, `asana`, `notion`, `slack`, `teams`,
	`vs ?code`, `intellij`, `webstorm`, `vim`, `emacs`,
	`figma`, `sketch`, `adobe`, `photoshop`, `illustrator`,
	`postman`, `insomnia`, `swagger`, `openapi`,
	`datadog`, `splunk`, `grafana`, `prometheus`, `new relic`,
	`linux`, `unix`, `windows`, `macos`,
	`ci/cd`, `devops`, `sre`, `infrastructure`,
}

var rolePatterns = []string{
	`engineer`, `developer`, `architect`, `lead`, `senior`, `junior`, `staff`, `principal`,
	`manager`, `director`, `vp`, `cto`, `ceo`, `founder`,
	`full.?stack`, `frontend`, `backend`, `mobile`, `ios`, `android`, `devops`, `sre`, `platform`,
	`data engineer`, `data scientist`, `ml engineer`, `ai engineer`,
	`product manager`, `project manager`, `scrum master`, `agile coach`,
	`designer`, `ux`, `ui`, `product designer`,
	`qa`, `quality`, `test`, `automation`,
}

var softSkillPatterns = []string{
	`communication`, `leadership`, `teamwork`, `collaboration`, `problem.?solving`,
	`critical thinking`, `analytical`, `creative`, `innovative`, `adaptable`,
	`time management`, `organization`, `attention to detail`, `self.?motivated`,
	`mentoring`, `coaching`, `presenting`, `public speaking`,
	`agile`, `scrum`, `kanban`, `lean`,
	`remote`, `async`, `cross.?functional`, `stakeholder`,
}
