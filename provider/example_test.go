package provider_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"promptchat/chat"
	"promptchat/provider"
	"promptchat/provider/testutil"
)

// ExampleNewTransport demonstrates creating an Ollama transport using the factory.
func ExampleNewTransport() {
	cfg := provider.Config{
		Type:    provider.ProviderTypeOllama,
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1:8b",
	}

	t, err := provider.NewTransport(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Transport created: %T\n", t)
	// Output: Transport created: *provider.OllamaTransport
}

// ExampleNewOllamaTransport demonstrates switching models on a transport.
func ExampleNewOllamaTransport() {
	t, err := provider.NewOllamaTransport("http://localhost:11434", "llama3.1:8b")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Current model: %s\n", t.GetModel())

	t.SetModel("gemma2:9b")
	fmt.Printf("New model: %s\n", t.GetModel())
	// Output:
	// Current model: llama3.1:8b
	// New model: gemma2:9b
}

// ExampleDetectFamily demonstrates choosing a prompt grammar from a model name.
func ExampleDetectFamily() {
	for _, model := range []string{"llama3.1:8b", "gemma2:9b", "hf.co/bartowski/gemma-2-9b-it-GGUF"} {
		family, err := provider.DetectFamily(model)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s -> %s\n", model, family)
	}
	// Output:
	// llama3.1:8b -> llama3
	// gemma2:9b -> gemma2
	// hf.co/bartowski/gemma-2-9b-it-GGUF -> gemma2
}

// Example_sessionTurn demonstrates one complete chat turn over a transport.
func Example_sessionTurn() {
	t := testutil.NewMockTransport("\n", "Hi", " there")
	session := chat.NewSession("You are terse.", chat.Formatter{Family: chat.FamilyGemma2}, t)

	session.AddUserMessage("hello")
	reply, err := session.Invoke(context.Background(), session.Prompt(), os.Stdout, nil, chat.InvokeOptions{})
	if err != nil {
		log.Fatal(err)
	}
	session.AddAssistantMessage(reply)
	fmt.Println()

	fmt.Printf("%q\n", session.Prompt())
	// Output:
	// Hi there
	// "<bos><start_of_turn>system\nYou are terse.<end_of_turn>\n<start_of_turn>user\nhello<end_of_turn>\n<start_of_turn>model\nHi there<end_of_turn>\n<start_of_turn>model\n"
}
