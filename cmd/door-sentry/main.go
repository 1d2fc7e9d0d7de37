package main

import "github.com/oshokin/door-sentry/cmd/door-sentry/cmd"

func main() {
	cmd.Execute()
}
