package initialize

// Message constants
const (
	MsgShort = "Create a starter pez.toml"

	MsgLong = `Init writes a commented starter manifest into the pez config
directory. An existing pez.toml is left alone unless --force is given.`

	MsgExample = `  # Create pez.toml next to your fish config
  pez init

  # Replace an existing manifest with the template
  pez init --force`

	MsgFlagForce = "Replace an existing pez.toml with the starter template"

	MsgCreated       = "Created %s\n"
	MsgAlreadyExists = "%s already exists (use --force to replace it)\n"
)
