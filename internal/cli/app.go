package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Directory is the set of user-directory operations the console drives.
// *services.UserDirectory satisfies it.
type Directory interface {
	Register(ctx context.Context, username, password, firstName, lastName, phone string) (*models.RegisteredUser, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	UpdateLoginTimestamp(ctx context.Context, username string) error
	All(ctx context.Context) ([]models.UserSummary, error)
	Get(ctx context.Context, username string) (*models.User, error)
	MessagesFrom(ctx context.Context, username string) ([]models.SentMessage, error)
	MessagesTo(ctx context.Context, username string) ([]models.ReceivedMessage, error)
}

type App struct {
	dir      Directory
	reader   *bufio.Reader
	out      io.Writer
	userName string
	close    func() error
}

// NewApp connects to the database named in c. Logs go to c.LogFile when set
// and are discarded otherwise so they do not interleave with the prompt.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	var logger logging.Logger = logging.Nop{}
	if c.LogFile != "" {
		l, err := logging.NewJSONLogger(c.LogFile, c.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = l
	}

	dir, db, err := server.OpenDirectory(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	a := newApp(dir, os.Stdin, os.Stdout)
	a.close = db.Close
	return a, nil
}

func newApp(dir Directory, in io.Reader, out io.Writer) *App {
	return &App{dir: dir, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	if a.close != nil {
		defer a.close()
	}
	fmt.Fprintln(a.out, "Welcome to Messagely console (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}
