package doctor

// Message constants
const (
	MsgShort = "Check the health of the pez installation"

	MsgLong = `Doctor inspects the manifest, the lockfile, and the directories pez
writes to, and reports one line per check. Warnings point at things worth
fixing; only genuine conflicts (two plugins recording the same destination
file) fail the command. Nothing is modified.`

	MsgExample = `  # Human-readable report
  pez doctor

  # Feed the report to other tools
  pez doctor --format json`

	MsgFlagFormat = "Output format: auto, term, text, json, yaml"
)
