// Package openai transcribes audio chunks through the OpenAI audio API with
// word-level timestamps.
package openai
