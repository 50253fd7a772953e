package agent

import (
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/actions"
	"github.com/lisanmuaddib/pagesync/pkg/ledger"
	"github.com/lisanmuaddib/pagesync/pkg/memory"
	"github.com/lisanmuaddib/pagesync/pkg/syncer"
)

// Config holds the configuration for the Agent
type Config struct {
	Store    *memory.Store
	Syncer   *syncer.Syncer
	Comments *actions.CommentResponder
	// Messages is optional; message operations fail without it.
	Messages *actions.MessageResponder
	Ledger   *ledger.Ledger
	Logger   *logrus.Logger
}
