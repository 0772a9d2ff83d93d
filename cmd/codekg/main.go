// Command codekg is a thin, cobra-based front end over the orchestrator
// package. It exists only to make the core runnable end-to-end; it
// contains no graph, ranking, or snippet logic of its own.
package main

func main() {
	Execute()
}
