// Package main provides the CLI entrypoint for snackd.
package main

func main() {
	Execute()
}
