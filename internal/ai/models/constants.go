package models

const (
	// === Groq Models ===
	ModelGroqLlama3_1_8b  = "llama-3.1-8b-instant"
	ModelGroqLlama3_3_70b = "llama-3.3-70b-versatile"
	ModelGroqGptOss120b   = "openai/gpt-oss-120b"
	ModelGroqGptOss20b    = "openai/gpt-oss-20b"

	// === Cerebras Models ===
	ModelCerebrasGptOss120b   = "gpt-oss-120b"
	ModelCerebrasLlama3_3_70b = "llama-3.3-70b"

	// === OpenAI Models ===
	ModelOpenAIGpt4oMini = "gpt-4o-mini"
	ModelOpenAIGpt4o     = "gpt-4o"
)

const (
	// === Task-Specific Default Models ===

	// Answer synthesis: high context, streams well.
	TaskAnswerModelGroq     = ModelGroqGptOss120b
	TaskAnswerModelCerebras = ModelCerebrasGptOss120b
	TaskAnswerModelOpenAI   = ModelOpenAIGpt4oMini
)
