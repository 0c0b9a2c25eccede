package main

import "github.com/vivekv1504/movie-search/internal/cmd"

func main() {
	cmd.Execute()
}
