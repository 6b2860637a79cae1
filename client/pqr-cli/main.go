package main

import "PerguntaQueRespondo/client/pqr-cli/cmd"

func main() {
	cmd.Execute()
}
