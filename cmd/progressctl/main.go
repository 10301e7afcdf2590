package main

import "edu_progress/cmd/progressctl/root"

func main() {
	root.Execute()
}
