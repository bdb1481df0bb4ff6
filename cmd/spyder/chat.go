package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/fwojciec/spyder"
)

// Run executes the chat command. Questions are read from stdin, one per
// line, until EOF or "exit".
func (c *ChatCmd) Run(deps *Dependencies) error {
	k := c.Results
	if k <= 0 {
		k = deps.Config.Chat.Results
	}

	if err := deps.Embedder.Load(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spyder.ErrorMessage(err))
		return err
	}

	prompt := color.New(color.FgGreen, color.Bold).SprintFunc()
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, prompt("Question: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, results, err := ask(deps.Ctx, deps, question, k)
		if err != nil {
			if deps.Ctx.Err() != nil {
				return deps.Ctx.Err()
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", spyder.ErrorMessage(err))
			continue
		}

		fmt.Fprintln(deps.Stdout, answer)
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, heading("Sources:"))
		fmt.Fprint(deps.Stdout, spyder.FormatSources(results))
		fmt.Fprintln(deps.Stdout)
	}
	fmt.Fprintln(deps.Stdout)
	return scanner.Err()
}

// ask retrieves the k entries nearest to question and has the model answer
// from them.
func ask(ctx context.Context, deps *Dependencies, question string, k int) (string, []spyder.SearchResult, error) {
	vectors, err := deps.Embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", nil, err
	}
	if len(vectors) != 1 {
		return "", nil, spyder.Errorf(spyder.EINTERNAL, "embedder returned %d vectors for 1 question", len(vectors))
	}

	results, err := deps.Entries.Search(ctx, vectors[0], k)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "", nil, spyder.Errorf(spyder.ENOTFOUND, "collection %q is empty; run spyder ingest first", deps.Config.Store.Collection)
	}

	answer, err := deps.Asker.Ask(ctx, question, results)
	if err != nil {
		return "", nil, err
	}
	return answer, results, nil
}
