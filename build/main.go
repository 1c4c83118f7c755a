package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

func goCommand(a *goyek.A, args ...string) {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		a.Error(err)
	}
}

var vet = goyek.Define(goyek.Task{
	Name:  "vet",
	Usage: "Run go vet on all packages",
	Action: func(a *goyek.A) {
		goCommand(a, "vet", "./...")
	},
})

var test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run all tests",
	Deps:  goyek.Deps{vet},
	Action: func(a *goyek.A) {
		goCommand(a, "test", "-race", "./...")
	},
})

var _ = goyek.Define(goyek.Task{
	Name:  "example",
	Usage: "Generate the CI document of testdata/matrix.yaml",
	Deps:  goyek.Deps{test},
	Action: func(a *goyek.A) {
		goCommand(a, "run", "./cmd/jobgen", "-config", "testdata/jobgen.toml", "-summary", "testdata/matrix.yaml")
	},
})

func main() {
	goyek.Main(os.Args[1:])
}
