package main

import "github.com/meysamhadeli/assetcore/cmd"

func main() {
	cmd.Execute()
}
