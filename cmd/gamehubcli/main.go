package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	rl "github.com/chzyer/readline"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base url")
	flag.Parse()

	completer := rl.NewPrefixCompleter(
		rl.PcItem("create",
			rl.PcItem("connect_4"),
			rl.PcItem("snake"),
		),
		rl.PcItem("join"),
		rl.PcItem("list"),
		rl.PcItem("state"),
		rl.PcItem("move"),
		rl.PcItem("watch"),
		rl.PcItem("exit"),
	)

	l, err := rl.NewEx(&rl.Config{
		Prompt:            "» ",
		HistoryFile:       "hist.txt",
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	cli := newAPI(*server)
	repl(l, cli)
}

type replState struct {
	gameId   string
	gameType string
	session  string
	clock    int
}

func repl(l *rl.Instance, cli *api) {
	st := &replState{}

	for {
		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit":
			return
		case "create":
			if len(parts) != 2 {
				fmt.Println("usage: create <game_type>")
				continue
			}
			id, err := cli.CreateGame(parts[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("created", id)
			st.gameId = id
			st.gameType = parts[1]
		case "join":
			if len(parts) == 2 && st.gameId != "" {
				// join <username> into the current game
				parts = []string{"join", st.gameId, parts[1]}
			}
			if len(parts) != 3 {
				fmt.Println("usage: join <game_id> <username>")
				continue
			}
			session, err := cli.JoinGame(parts[1], parts[2])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("joined as", parts[2])
			st.gameId = parts[1]
			st.session = session
			state, err := cli.GetState(st.gameId)
			if err == nil {
				st.gameType = state.GameName
			}
		case "list":
			page := 1
			if len(parts) == 2 {
				page, _ = strconv.Atoi(parts[1])
			}
			res, err := cli.ListGames(page)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%d games\n", res.NumberOfGames)
			for _, s := range res.GameSummaries {
				fmt.Printf("  %s %s %s players=%v\n", s.GameId, s.GameType, s.Stage, s.Players)
			}
		case "state":
			if st.gameId == "" {
				fmt.Println("join or create a game first")
				continue
			}
			state, err := cli.GetState(st.gameId)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printState(state)
		case "move":
			if len(parts) != 2 {
				fmt.Println("usage: move <column|direction>")
				continue
			}
			if st.session == "" {
				fmt.Println("join a game first")
				continue
			}
			clock, err := cli.SubmitMove(st.gameId, st.session, st.gameType, parts[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			st.clock = clock
			fmt.Println("clock", clock)
		case "watch":
			if st.gameId == "" {
				fmt.Println("join or create a game first")
				continue
			}
			clock, err := cli.WaitForUpdate(st.gameId, st.clock)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if clock == st.clock {
				fmt.Println("nothing new")
				continue
			}
			st.clock = clock
			state, err := cli.GetState(st.gameId)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printState(state)
		default:
			fmt.Println("unknown command:", parts[0])
		}
	}
}

func printState(s *gameState) {
	fmt.Printf("game:     %s\n", s.GameName)
	fmt.Printf("stage:    %s\n", s.Stage)
	fmt.Printf("players:  %v\n", s.Players)
	fmt.Printf("can move: %v\n", s.CanMove)
	if s.Stage == "ended" {
		if len(s.Winners) == 0 {
			fmt.Println("result:   draw")
		} else {
			fmt.Printf("result:   %v wins\n", s.Winners)
		}
	}
}
