package main

import "github.com/ikorchynskyi/opsworks-curator/cmd"

func main() {
	cmd.Execute()
}
