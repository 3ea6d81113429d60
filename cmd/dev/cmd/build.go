package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

const (
	binary    = "dist/als"
	mainPkg   = "./cmd/als"
	baseImage = "gophertribe/gobuild:1.25-bookworm"
)

// target is one platform the cli is built for. The bridges and sqlite need
// cgo, so anything that is not the host goes through the build container.
type target struct {
	os, arch string
	tags     string
	// cross is set inside the container, where the cgo cross toolchain is.
	cross bool
}

func (t target) native() bool {
	return t.cross || (t.os == runtime.GOOS && t.arch == runtime.GOARCH)
}

func (t target) container() string {
	return fmt.Sprintf("./dev-%s-%s", t.os, t.arch)
}

// buildTags splits the comma separated --tags flag.
func (t target) buildTags() []string {
	var out []string
	for _, tag := range strings.Split(t.tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func (t target) goBuild(version string) error {
	return build.GoBuild(binary, mainPkg, build.GoBuildOpts{
		Version:       version,
		InjectVersion: true,
		ConfigPackage: "main",
		EnableCgo:     true,
		Arch:          t.arch,
		OS:            t.os,
		Tags:          t.buildTags(),
	})
}

// dockerArgs re-runs this tool inside the container as a cross build.
func (t target) dockerArgs(version string) []string {
	args := []string{"build", "--cross", "--version", version, "--os", t.os, "--arch", t.arch}
	if t.tags != "" {
		args = append(args, "--tags", t.tags)
	}
	return args
}

func BuildCmd() *cobra.Command {
	var (
		t       target
		version string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the als cli into dist/",
		RunE: func(cmd *cobra.Command, args []string) error {
			if t.native() {
				return t.goBuild(version)
			}
			return build.Docker(cmd.Context(), t.container(), t.dockerArgs(version), build.DockerBuildOpts{
				NoCache: noCache,
				Image:   baseImage,
			})
		},
	}
	cmd.Flags().StringVar(&version, "version", "latest", "version injected into the binary")
	cmd.Flags().StringVar(&t.os, "os", runtime.GOOS, "target os")
	cmd.Flags().StringVar(&t.arch, "arch", runtime.GOARCH, "target arch")
	cmd.Flags().StringVar(&t.tags, "tags", "", "comma separated build tags, e.g. ch347")
	cmd.Flags().BoolVar(&t.cross, "cross", false, "cross-compile in place instead of starting a container")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "build the container without cache")
	return cmd
}
