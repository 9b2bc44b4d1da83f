package client

import (
	"github.com/coachpo/orientwire/internal/message"
	"github.com/coachpo/orientwire/internal/protocol"
)

// RecordLoad fetches one record by identity. The result's Record is nil
// when the identity does not exist; records a fetch plan pulled in
// alongside it land in Prefetched.
func (c *Client) RecordLoad(rid RID, fetchPlan string) (LoadResult, error) {
	msg, err := prepare[*message.RecordLoad](c, "record_load")
	if err != nil {
		return LoadResult{}, err
	}
	msg.RID = rid
	msg.FetchPlan = fetchPlan
	res, err := c.disp.Dispatch("record_load", msg)
	if err != nil {
		return LoadResult{}, err
	}
	return res.(message.LoadResult), nil
}

// RecordCreate stores a new record in the given cluster. The identity and
// version the server assigned are returned and also written back onto the
// record.
func (c *Client) RecordCreate(clusterID int16, rec *Record) (CreateResult, error) {
	msg, err := prepare[*message.RecordCreate](c, "record_create")
	if err != nil {
		return CreateResult{}, err
	}
	msg.Cluster = clusterID
	msg.Content = recordContent(rec)
	msg.Kind = recordKind(rec)
	res, err := c.disp.Dispatch("record_create", msg)
	if err != nil {
		return CreateResult{}, err
	}
	result := res.(message.CreateResult)
	rec.RID = result.RID
	rec.Version = result.Version
	return result, nil
}

// RecordUpdate replaces a stored record's content, guarded by the given
// version; -1 skips the optimistic check. The server's new version is
// returned and written back onto the record.
func (c *Client) RecordUpdate(rid RID, rec *Record, version int32) (int32, error) {
	msg, err := prepare[*message.RecordUpdate](c, "record_update")
	if err != nil {
		return 0, err
	}
	msg.RID = rid
	msg.Content = recordContent(rec)
	msg.Version = version
	msg.Kind = recordKind(rec)
	res, err := c.disp.Dispatch("record_update", msg)
	if err != nil {
		return 0, err
	}
	next := res.(int32)
	rec.RID = rid
	rec.Version = next
	return next, nil
}

// RecordDelete removes a stored record, guarded by the given version; -1
// skips the optimistic check. It reports whether the server found and
// deleted the record.
func (c *Client) RecordDelete(rid RID, version int32) (bool, error) {
	msg, err := prepare[*message.RecordDelete](c, "record_delete")
	if err != nil {
		return false, err
	}
	msg.RID = rid
	msg.Version = version
	res, err := c.disp.Dispatch("record_delete", msg)
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func recordKind(rec *Record) byte {
	if rec == nil || rec.Kind == 0 {
		return protocol.RecordDocument
	}
	return rec.Kind
}
