package main

import (
	"github.com/bornholm/crosspost/internal/command"
	"github.com/bornholm/crosspost/internal/command/categories"
	"github.com/bornholm/crosspost/internal/command/convert"
	"github.com/bornholm/crosspost/internal/command/history"
	"github.com/bornholm/crosspost/internal/command/notelogin"
	"github.com/bornholm/crosspost/internal/command/publish"
	"github.com/bornholm/crosspost/internal/command/scaffold"
	"github.com/bornholm/crosspost/internal/command/validate"

	_ "github.com/bornholm/crosspost/internal/adapter/blog"
	_ "github.com/bornholm/crosspost/internal/adapter/memory"
	_ "github.com/bornholm/crosspost/internal/adapter/note"
	_ "github.com/bornholm/crosspost/internal/adapter/qiita"
	_ "github.com/bornholm/crosspost/internal/adapter/zenn"
)

func main() {
	command.Main(
		"crosspost", "transform an article and publish it on several platforms",
		publish.Command(),
		validate.Command(),
		convert.Command(),
		scaffold.Command(),
		history.Command(),
		categories.Command(),
		notelogin.Command(),
	)
}
