// Package openai implements the ai.Embedder interface against any
// OpenAI-compatible embedding endpoint (OpenAI itself, Ollama,
// LocalAI, vLLM) via langchaingo.
package openai
