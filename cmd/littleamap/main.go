// Command littleamap renders a zoomable tile mosaic from the filled maps
// found in a Minecraft world save.
package main

import (
	"fmt"
	"os"

	"github.com/kvalheim/littleamap/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
