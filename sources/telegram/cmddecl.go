package telegram

type UsersCmd struct {
	Block struct {
		Username string `arg:"" help:"Username (with or without @ prefix)"`
	} `cmd:"" help:"Block a user"`

	Unblock struct {
		Username string `arg:"" help:"Username (with or without @ prefix)"`
	} `cmd:"" help:"Unblock a user"`

	Promote struct {
		Username string `arg:"" help:"Username (with or without @ prefix)"`
	} `cmd:"" help:"Grant the admin flag"`

	Demote struct {
		Username string `arg:"" help:"Username (with or without @ prefix)"`
	} `cmd:"" help:"Revoke the admin flag"`

	Grant struct {
		Username   string `arg:"" help:"Username (with or without @ prefix)"`
		Capability string `arg:"" help:"Capability to grant"`
	} `cmd:"" help:"Grant a capability"`

	Revoke struct {
		Username   string `arg:"" help:"Username (with or without @ prefix)"`
		Capability string `arg:"" help:"Capability to revoke"`
	} `cmd:"" help:"Revoke a capability"`
}

type FsubCmd struct {
	List struct {
	} `cmd:"" default:"1" help:"List required channels"`

	Add struct {
	} `cmd:"" help:"Start adding a required channel"`
}
