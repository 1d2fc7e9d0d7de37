package main

import "github.com/oshokin/door-sentry/cmd/trigger-server/cmd"

func main() {
	cmd.Execute()
}
