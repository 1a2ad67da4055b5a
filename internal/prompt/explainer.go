package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/unit-mesh/autodev-context/pkg/llm"
)

const explainerSystemPrompt = `You are an assistant that explains the REST topology of a Next.js codebase. You answer questions using a dependency graph that captures which files expose API endpoints and which files call into them. Provide specific, grounded answers referencing services, files, endpoints, and handlers found in the provided context. If the context does not contain enough information to answer fully, say so clearly.`

// Explainer answers freeform questions about the extracted topology by
// combining graph context with an LLM.
type Explainer struct {
	client     llm.Client
	ctxBuilder *ContextBuilder
	log        func(format string, args ...any)
	verbose    bool
}

// NewExplainer creates an explain agent.
func NewExplainer(client llm.Client, ctxBuilder *ContextBuilder, logFn func(format string, args ...any), verbose bool) *Explainer {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Explainer{
		client:     client,
		ctxBuilder: ctxBuilder,
		log:        logFn,
		verbose:    verbose,
	}
}

// Explain assembles graph context relevant to the query and asks the LLM.
// The overview is always included; URL-shaped tokens add demand context and
// service-name tokens add per-service context.
func (e *Explainer) Explain(ctx context.Context, query string) (string, error) {
	if e.verbose {
		e.log("Building topology context...")
	}

	var parts []string

	overview, err := e.ctxBuilder.BuildOverviewContext(ctx)
	if err != nil {
		return "", fmt.Errorf("build overview context: %w", err)
	}
	parts = append(parts, overview)

	if url := extractURLPath(query); url != "" {
		demandCtx, err := e.ctxBuilder.BuildDemandContext(ctx, url)
		if err == nil && !strings.HasPrefix(demandCtx, "No demands") {
			parts = append(parts, demandCtx)
		}
	}

	for _, word := range strings.Fields(query) {
		word = strings.Trim(word, ".,;:?!\"'`")
		if word == "" || strings.Contains(word, "/") {
			continue
		}
		svcCtx, err := e.ctxBuilder.BuildServiceContext(ctx, word)
		if err == nil && !strings.HasPrefix(svcCtx, "No indexed service") {
			parts = append(parts, svcCtx)
			break
		}
	}

	contextText := strings.Join(parts, "\n\n")
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)

	if e.verbose {
		e.log("Querying %s (%s)...", e.client.Provider(), e.client.Model())
	}
	resp, err := e.client.Chat(ctx, explainerSystemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("llm chat: %w", err)
	}
	return resp.Content, nil
}

// extractURLPath looks for a token in the query that looks like a URL path.
func extractURLPath(query string) string {
	for _, word := range strings.Fields(query) {
		word = strings.Trim(word, ".,;:?!\"'`")
		if strings.HasPrefix(word, "/") {
			return word
		}
	}
	return ""
}
