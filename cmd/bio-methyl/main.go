package main

// See doc.go for documentation

import "github.com/grailbio/epiallele/cmd/bio-methyl/cmd"

func main() {
	cmd.Run()
}
