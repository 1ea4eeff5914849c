// Package commands holds the user-facing strings of the sitelink CLI.
// Long texts live in msgs/ and are embedded so the binary stays
// self-contained.
package commands

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort    = "Make local source trees win over registry-installed packages"
	MsgVersionShort = "Print version information"
	MsgVersionLong  = "Print detailed version information including commit hash and build date"
	MsgPrepareShort = "Remove the registry copy, link a source tree, verify resolution"
	MsgInstallShort = "Link a source tree into the site root"
	MsgRemoveShort  = "Remove a component's installed copy from the site root"
	MsgVerifyShort  = "Show which installation a component resolves to"

	// Status messages
	MsgDryRunNotice = "\nDRY RUN MODE - No changes were made"

	// Version output
	MsgVersionFormat = "sitelink version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrBadFormat   = "invalid output format: %w"
	MsgErrNoComponent = "no component given and none configured"
)

// Long messages and examples, embedded from msgs/
var (
	//go:embed msgs/prepare-long.txt
	msgPrepareLongRaw string
	MsgPrepareLong    = strings.TrimSpace(msgPrepareLongRaw)

	//go:embed msgs/prepare-example.txt
	msgPrepareExampleRaw string
	MsgPrepareExample    = strings.TrimSpace(msgPrepareExampleRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)

	//go:embed msgs/verify-example.txt
	msgVerifyExampleRaw string
	MsgVerifyExample    = strings.TrimSpace(msgVerifyExampleRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/remove-long.txt
	msgRemoveLongRaw string
	MsgRemoveLong    = strings.TrimSpace(msgRemoveLongRaw)
)
