package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/woundlink/callcore/internal/protocol"
	"github.com/woundlink/callcore/internal/roomname"
	"github.com/woundlink/callcore/internal/sigclient"
	"github.com/woundlink/callcore/internal/ui"
)

var flagJoinRole string

var joinCmd = &cobra.Command{
	Use:   "join [room]",
	Short: "Join a room as an interactive debug participant",
	Long: `Join a room and print every event the server sends.

Lines typed on stdin are sent as chat messages. Commands:
  /audio on|off   toggle audio
  /video on|off   toggle video
  /ping           liveness ping
  /quit           leave the room

Without a room argument a fresh memorable room name is generated.

Examples:
  callctl join calm-harbor-maple-otter --role doctor
  callctl join`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		roomID := roomname.Generate()
		if len(args) == 1 {
			roomID = args[0]
		}

		sp := ui.NewConnectionSpinner("Connecting to server...")
		sp.Start()
		client := sigclient.New(cfg.WebSocketURL(), cfg.Origin, slog.Default())
		if err := client.Connect(cmd.Context()); err != nil {
			sp.Error("Could not connect")
			return err
		}
		defer client.Close()
		sp.Success("Connected to " + cfg.ServerURL)

		events := sigclient.NewHandler(slog.Default())
		go events.Run(client.Incoming())

		if err := client.Join(roomID, flagJoinRole); err != nil {
			return err
		}
		ui.PrintInfof("Joining %s as %s", ui.BoldStyle.Render(roomID), protocol.JoinRoom{UserType: flagJoinRole}.Role())

		lines := make(chan string)
		go readLines(os.Stdin, lines)

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-client.Done():
				return errors.New("connection to server closed")
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				event, data, err := parseInput(line)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					ui.PrintWarning(err.Error())
					continue
				}
				if event == "" {
					continue
				}
				if err := client.Send(event, data); err != nil {
					return err
				}
			case users, ok := <-events.RoomUsers:
				if ok {
					printRoomUsers(roomID, users)
				}
			case v, ok := <-events.UserJoined:
				if ok {
					printEvent(ui.IconPeer, protocol.EventUserJoined, "%s (%s) joined, %d in room", v.UserID, v.UserType, v.TotalUsers)
				}
			case v, ok := <-events.UserLeft:
				if ok {
					printEvent(ui.IconPeer, protocol.EventUserLeft, "%s left, %d in room", v.UserID, v.TotalUsers)
				}
			case v, ok := <-events.Chat:
				if ok {
					printEvent(ui.IconChat, protocol.EventChatMessage, "%s (%s): %s", v.Sender, v.SenderType, v.Message)
				}
			case v, ok := <-events.Media:
				if ok {
					icon := ui.IconAudio
					if v.Kind == "video" {
						icon = ui.IconVideo
					}
					printEvent(icon, v.Kind, "%s %s", v.UserID, onOff(v.Enabled))
				}
			case v, ok := <-events.Signals:
				if ok {
					printEvent(ui.IconSignal, v.Event, "from %s (%d bytes)", v.Sender, len(v.Payload))
				}
			case _, ok := <-events.Pong:
				if ok {
					printEvent(ui.IconConnect, protocol.EventPong, "server is alive")
				}
			}
		}
	},
}

func init() {
	joinCmd.Flags().StringVarP(&flagJoinRole, "role", "r", "", "participant role (default "+protocol.DefaultUserType+")")
}

var errQuit = errors.New("quit")

// parseInput maps one stdin line to an outbound event. Blank lines yield
// an empty event.
func parseInput(line string) (string, any, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return protocol.EventChatMessage, protocol.ChatMessage{Message: line}, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return "", nil, errQuit
	case "/ping":
		return protocol.EventPing, nil, nil
	case "/audio", "/video":
		if len(fields) != 2 {
			return "", nil, fmt.Errorf("usage: %s on|off", fields[0])
		}
		var enabled bool
		switch fields[1] {
		case "on":
			enabled = true
		case "off":
		default:
			return "", nil, fmt.Errorf("usage: %s on|off", fields[0])
		}
		if fields[0] == "/audio" {
			return protocol.EventToggleAudio, enabled, nil
		}
		return protocol.EventToggleVideo, enabled, nil
	}
	return "", nil, fmt.Errorf("unknown command %s", fields[0])
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}

func printRoomUsers(roomID string, users []protocol.RoomUser) {
	if len(users) == 0 {
		printEvent(ui.IconRoom, protocol.EventRoomUsers, "%s is empty, waiting for others", roomID)
		return
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = fmt.Sprintf("%s (%s)", u.ID, u.Type)
	}
	printEvent(ui.IconRoom, protocol.EventRoomUsers, "already in %s: %s", roomID, strings.Join(names, ", "))
}

func printEvent(icon, event, format string, args ...any) {
	fmt.Printf("%s %s %s %s\n",
		ui.MutedStyle.Render(time.Now().Format(time.TimeOnly)),
		icon,
		ui.EventStyle.Render(event),
		fmt.Sprintf(format, args...),
	)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
