package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/app"
	"github.com/pscheid92/mediapost/internal/domain"
	"github.com/pscheid92/mediapost/internal/platform/correlation"
)

// MediaAPI is the part of the backend API the console drives.
type MediaAPI interface {
	ListPosts(ctx context.Context, query string) ([]domain.Post, error)
	CreatePost(ctx context.Context, post domain.NewPost) (*domain.Post, error)
	DeletePost(ctx context.Context, id int64) error
	CurrentUser(ctx context.Context) (*domain.Identity, error)
}

var errQuit = errors.New("quit")

const helpText = `commands:
  login <user> <password>   sign in and return to the page that asked for it
  logout                    sign out
  whoami                    show the signed-in identity (requires a session)
  posts [query]             list posts
  post <media-url> <title>  publish a post (requires a session)
  delete <id>               delete a post (requires a session)
  go <path>                 navigate
  back                      navigate back
  overlays                  show the overlay stack
  close <n>                 dismiss overlay n
  help                      show this help
  quit                      exit`

type Console struct {
	root  *app.Root
	api   MediaAPI
	clock clockwork.Clock
	out   io.Writer
}

func New(root *app.Root, api MediaAPI, clock clockwork.Clock, out io.Writer) *Console {
	return &Console{root: root, api: api, clock: clock, out: out}
}

// Run reads commands from in until EOF, quit or ctx cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	c.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			if err := c.Execute(ctx, line); errors.Is(err, errQuit) {
				return nil
			}
			c.prompt()
		}
	}
}

// Execute runs a single command line. Command failures are printed, not returned.
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	ctx, id := correlation.Ensure(ctx)
	slog.DebugContext(ctx, "Executing command", "command", fields[0], "correlation_id", id)

	cmd, args := fields[0], fields[1:]
	var err error
	switch cmd {
	case "help":
		c.println(helpText)
	case "quit", "exit":
		return errQuit
	case "login":
		err = c.login(ctx, args)
	case "logout":
		err = c.root.Logout(ctx)
	case "whoami":
		err = c.whoami(ctx)
	case "posts":
		err = c.posts(ctx, args)
	case "post":
		err = c.post(ctx, args)
	case "delete":
		err = c.deletePost(ctx, args)
	case "go":
		err = c.navigate(args)
	case "back":
		if !c.root.Router().Back() {
			c.println("already at the start of the history")
		}
	case "overlays":
		RenderOverlays(c.out, c.root.Overlays().Entries())
	case "close":
		err = c.closeOverlay(args)
	default:
		err = fmt.Errorf("unknown command %q, try help", cmd)
	}

	if err != nil {
		c.printf("error: %v\n", err)
	}
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <user> <password>")
	}
	if _, err := c.root.CompleteLogin(ctx, domain.Credentials{Username: args[0], Password: args[1]}); err != nil {
		return err
	}
	return nil
}

func (c *Console) whoami(ctx context.Context) error {
	var identity *domain.Identity
	err := c.root.RunBusy(ctx, "Could not load profile", func(ctx context.Context) error {
		var err error
		identity, err = c.api.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return err
	}
	RenderIdentity(c.out, identity)
	return nil
}

func (c *Console) posts(ctx context.Context, args []string) error {
	var posts []domain.Post
	err := c.root.RunBusy(ctx, "Could not load posts", func(ctx context.Context) error {
		var err error
		posts, err = c.api.ListPosts(ctx, strings.Join(args, " "))
		return err
	})
	if err != nil {
		return err
	}
	RenderPosts(c.out, posts)
	return nil
}

func (c *Console) post(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: post <media-url> <title>")
	}
	newPost := domain.NewPost{MediaURL: args[0], Title: strings.Join(args[1:], " ")}

	var created *domain.Post
	err := c.root.RunBusy(ctx, "Could not publish post", func(ctx context.Context) error {
		var err error
		created, err = c.api.CreatePost(ctx, newPost)
		return err
	})
	if err != nil {
		return err
	}
	c.printf("published #%d\n", created.ID)
	return nil
}

func (c *Console) deletePost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	return c.root.RunBusy(ctx, "Could not delete post", func(ctx context.Context) error {
		return c.api.DeletePost(ctx, id)
	})
}

func (c *Console) navigate(args []string) error {
	if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
		return errors.New("usage: go </path>")
	}
	c.root.Router().NavigateTo(args[0], domain.NavigateOptions{})
	return nil
}

func (c *Console) closeOverlay(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: close <n>")
	}
	n, err := strconv.Atoi(args[0])
	entries := c.root.Overlays().Entries()
	if err != nil || n < 1 || n > len(entries) {
		return fmt.Errorf("no overlay %q", args[0])
	}
	if !c.root.Overlays().Dismiss(entries[n-1]) {
		return fmt.Errorf("overlay %d cannot be closed", n)
	}
	return nil
}

func (c *Console) prompt() {
	RenderStatus(c.out, c.root.Router().Location(), c.root.Session().Session(), c.clock.Now())
	c.printf("> ")
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
