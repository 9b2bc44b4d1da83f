package client

import (
	"fmt"

	"github.com/coachpo/orientwire/errs"
	"github.com/coachpo/orientwire/internal/message"
)

// DBOpen authenticates against one database and opens it, installing the
// issued session and the database's cluster layout. Empty arguments fall
// back to the configured database name and credentials. Opening while
// another database is open simply re-runs the exchange; the server
// reissues the session.
func (c *Client) DBOpen(name, username, password string) ([]Cluster, error) {
	msg, err := prepare[*message.DBOpen](c, "db_open")
	if err != nil {
		return nil, err
	}
	msg.Database = orDefault(name, c.cfg.Database.Name)
	msg.Type = c.databaseType("")
	msg.Username = orDefault(username, c.cfg.Credentials.Username)
	msg.Password = orDefault(password, c.cfg.Credentials.Password)
	res, err := c.disp.Dispatch("db_open", msg)
	if err != nil {
		return nil, err
	}
	result := res.(message.OpenResult)
	c.clusters.Replace(result.Clusters)
	c.release = result.Release
	return result.Clusters, nil
}

// DBClose releases the open database and ends the session. The server
// sends no reply and retires the connection, so the socket is torn down
// too; the client is finished afterwards. Closing a disconnected client
// is a no-op.
func (c *Client) DBClose() error {
	if !c.sock.Connected() {
		return nil
	}
	msg, err := prepare[*message.DBClose](c, "db_close")
	if err != nil {
		return err
	}
	if _, err := c.disp.Dispatch("db_close", msg); err != nil {
		return err
	}
	c.clusters.Replace(nil)
	c.release = ""
	return c.sock.Close()
}

// DBReload refreshes the cluster layout of the open database, replacing
// the client's copy.
func (c *Client) DBReload() ([]Cluster, error) {
	msg, err := prepare[*message.DBReload](c, "db_reload")
	if err != nil {
		return nil, err
	}
	res, err := c.disp.Dispatch("db_reload", msg)
	if err != nil {
		return nil, err
	}
	result := res.(message.ReloadResult)
	c.clusters.Replace(result.Clusters)
	return result.Clusters, nil
}

// DBSize returns the size of the open database in bytes.
func (c *Client) DBSize() (int64, error) {
	msg, err := prepare[*message.DBSize](c, "db_size")
	if err != nil {
		return 0, err
	}
	res, err := c.disp.Dispatch("db_size", msg)
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// DBCountRecords returns the number of records in the open database.
func (c *Client) DBCountRecords() (int64, error) {
	msg, err := prepare[*message.DBCountRecords](c, "db_count_records")
	if err != nil {
		return 0, err
	}
	res, err := c.disp.Dispatch("db_count_records", msg)
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// ClusterAdd creates a data cluster, letting the server assign the id,
// and folds it into the client's cluster layout.
func (c *Client) ClusterAdd(name string) (int16, error) {
	msg, err := prepare[*message.ClusterAdd](c, "data_cluster_add")
	if err != nil {
		return -1, err
	}
	msg.Name = name
	msg.ID = -1
	res, err := c.disp.Dispatch("data_cluster_add", msg)
	if err != nil {
		return -1, err
	}
	id := res.(int16)
	c.clusters.Add(Cluster{ID: id, Name: name})
	return id, nil
}

// ClusterDrop removes a data cluster by id, dropping it from the client's
// cluster layout when the server confirms.
func (c *Client) ClusterDrop(id int16) (bool, error) {
	msg, err := prepare[*message.ClusterDrop](c, "data_cluster_drop")
	if err != nil {
		return false, err
	}
	msg.ID = id
	res, err := c.disp.Dispatch("data_cluster_drop", msg)
	if err != nil {
		return false, err
	}
	dropped := res.(bool)
	if dropped {
		c.clusters.Remove(id)
	}
	return dropped, nil
}

// ClusterCount sums the record counts of the given clusters.
func (c *Client) ClusterCount(ids ...int16) (int64, error) {
	msg, err := prepare[*message.ClusterCount](c, "data_cluster_count")
	if err != nil {
		return 0, err
	}
	msg.IDs = ids
	res, err := c.disp.Dispatch("data_cluster_count", msg)
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// ClusterCountByName resolves cluster names against the open database's
// layout and counts their records.
func (c *Client) ClusterCountByName(names ...string) (int64, error) {
	ids := make([]int16, 0, len(names))
	for _, name := range names {
		id, ok := c.clusters.IDByName(name)
		if !ok {
			return 0, errs.New("client.cluster_count", errs.CodeInvalid,
				errs.WithMessage(fmt.Sprintf("unknown cluster %q", name)))
		}
		ids = append(ids, id)
	}
	return c.ClusterCount(ids...)
}

// ClusterDataRange returns the inclusive record-position span of one
// cluster.
func (c *Client) ClusterDataRange(id int16) (DataRange, error) {
	msg, err := prepare[*message.ClusterDataRange](c, "data_cluster_data_range")
	if err != nil {
		return DataRange{}, err
	}
	msg.ID = id
	res, err := c.disp.Dispatch("data_cluster_data_range", msg)
	if err != nil {
		return DataRange{}, err
	}
	return res.(message.DataRange), nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
