package main

import "github.com/frahmantamala/budget-story/cmd"

func main() {
	cmd.Execute()
}
