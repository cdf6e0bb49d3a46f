package main

import "github.com/jmehdipour/enroll-gateway/cmd"

func main() {
	cmd.Execute()
}
