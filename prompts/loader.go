package prompts

import (
	_ "embed"
)

//go:embed rephrase_query.txt
var RephraseQuery string

//go:embed query_plan.txt
var QueryPlan string

//go:embed search_answer.txt
var SearchAnswer string

//go:embed related_questions.txt
var RelatedQuestions string
