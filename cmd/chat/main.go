// Command chat is a terminal client for talking to the Hearthvale NPCs
// over the HTTP API, mostly for poking at personas without the browser.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", "http://localhost:3210", "Hearthvale server URL")
	user := flag.String("user", "wanderer", "Player name")
	flag.Parse()

	playerID := uuid.New().String()

	fmt.Println("Hearthvale chat")
	fmt.Printf("Server: %s | Player: %s\n", *server, *user)
	fmt.Println("Talk with @Name, e.g. '@Odette any gossip?'. Commands: /npcs, /save, /load, exit")
	fmt.Println("---")

	listNPCs(*server)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit":
			fmt.Println("Farewell!")
			return
		case input == "/npcs":
			listNPCs(*server)
			continue
		case input == "/save" || input == "/load":
			post(*server+"/api"+input, nil)
			continue
		}

		npc, text := splitMention(input)
		if npc == "" {
			fmt.Println("Who are you talking to? Start with @Name.")
			continue
		}
		sendMessage(*server, npc, *user, playerID, text)
	}
}

// splitMention extracts a leading @Name mention.
func splitMention(input string) (string, string) {
	if !strings.HasPrefix(input, "@") {
		return "", input
	}
	parts := strings.SplitN(input[1:], " ", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func listNPCs(server string) {
	resp, err := http.Get(server + "/api/npcs")
	if err != nil {
		fmt.Printf("! failed to reach server: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var npcs []struct {
		Name   string  `json:"name"`
		Mood   string  `json:"mood"`
		Energy float64 `json:"energy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&npcs); err != nil {
		fmt.Printf("! failed to parse npcs: %v\n", err)
		return
	}
	fmt.Println("Villagers:")
	for _, n := range npcs {
		fmt.Printf("  @%s (%s, energy %.0f)\n", n.Name, n.Mood, n.Energy)
	}
}

func sendMessage(server, npc, user, playerID, text string) {
	body, _ := json.Marshal(map[string]interface{}{
		"sender": map[string]string{"name": user, "id": playerID},
		"text":   text,
	})
	resp, err := http.Post(server+"/api/npcs/"+npc+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("! request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		fmt.Printf("%s seems lost in thought...\n", npc)
		return
	}

	var result struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Printf("! failed to parse reply: %v\n", err)
		return
	}
	if result.Error != "" {
		fmt.Printf("! %s\n", result.Error)
		return
	}
	fmt.Printf("%s: %s\n", npc, result.Reply)
}

func post(url string, body []byte) {
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("! request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Printf("! failed to parse reply: %v\n", err)
		return
	}
	fmt.Printf("%v\n", result)
}
