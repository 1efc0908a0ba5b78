package main

import (
	"github.com/jpfraneto/rebrnd-backend-sub000/cmd"
)

func main() {
	cmd.Execute()
}
