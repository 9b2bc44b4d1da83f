package client

import (
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/protocol"
)

// Connect authenticates against the server itself without opening a
// database, for server-level work like creating or dropping databases.
// It returns the issued session id; a token, when negotiated, is
// retrievable through SessionToken.
func (c *Client) Connect(username, password string) (int32, error) {
	msg, err := prepare[*message.Connect](c, "connect")
	if err != nil {
		return protocol.SessionNone, err
	}
	msg.Username = username
	msg.Password = password
	res, err := c.disp.Dispatch("connect", msg)
	if err != nil {
		return protocol.SessionNone, err
	}
	return res.(message.ConnectResult).SessionID, nil
}

// Shutdown asks the server process to stop. The credentials are the
// server-level ones from the server's own configuration.
func (c *Client) Shutdown(username, password string) error {
	msg, err := prepare[*message.Shutdown](c, "shutdown")
	if err != nil {
		return err
	}
	msg.Username = username
	msg.Password = password
	_, err = c.disp.Dispatch("shutdown", msg)
	return err
}

// DBCreate provisions a database on the server. Empty type or storage
// fall back to the configured defaults, document on plocal. Requires a
// server-level session from Connect.
func (c *Client) DBCreate(name, dbType, storage string) error {
	msg, err := prepare[*message.DBCreate](c, "db_create")
	if err != nil {
		return err
	}
	msg.Database = name
	msg.Type = c.databaseType(dbType)
	msg.Storage = c.storageType(storage)
	_, err = c.disp.Dispatch("db_create", msg)
	return err
}

// DBDrop deletes a database from the given storage, default plocal.
// Requires a server-level session from Connect.
func (c *Client) DBDrop(name, storage string) error {
	msg, err := prepare[*message.DBDrop](c, "db_drop")
	if err != nil {
		return err
	}
	msg.Database = name
	msg.Storage = c.storageType(storage)
	_, err = c.disp.Dispatch("db_drop", msg)
	return err
}

// DBExists reports whether a database is present in the given storage,
// default plocal. Requires a server-level session from Connect.
func (c *Client) DBExists(name, storage string) (bool, error) {
	msg, err := prepare[*message.DBExists](c, "db_exists")
	if err != nil {
		return false, err
	}
	msg.Database = name
	msg.Storage = c.storageType(storage)
	res, err := c.disp.Dispatch("db_exists", msg)
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

// DBList returns the databases the server hosts, name to storage
// location. Requires a server-level session from Connect.
func (c *Client) DBList() (map[string]string, error) {
	msg, err := prepare[*message.DBList](c, "db_list")
	if err != nil {
		return nil, err
	}
	res, err := c.disp.Dispatch("db_list", msg)
	if err != nil {
		return nil, err
	}
	return res.(message.DatabasesResult).Databases, nil
}

func (c *Client) databaseType(override string) string {
	switch {
	case override != "":
		return override
	case c.cfg.Database.Type != "":
		return c.cfg.Database.Type
	default:
		return protocol.DBTypeDocument
	}
}

func (c *Client) storageType(override string) string {
	switch {
	case override != "":
		return override
	case c.cfg.Database.Storage != "":
		return c.cfg.Database.Storage
	default:
		return protocol.StoragePLocal
	}
}
