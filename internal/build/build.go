package build

import "strings"

var (
	Version = "dev"
	AppName = "Flowprobe"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}
