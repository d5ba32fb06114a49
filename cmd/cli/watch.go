package main

import (
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/sapliy/atm-network/internal/atm"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live transaction notifications",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := post("/feed/token", map[string]any{
			"account_id": accountID,
			"pin":        pin,
		})
		if err != nil {
			fmt.Printf("Feed access denied: %v\n", err)
			return
		}
		token := strings.Trim(string(out["token"]), `"`)

		wsURL := strings.Replace(atmURL(), "http", "ws", 1) + "/feed?token=" + token
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			fmt.Printf("Error connecting to feed: %v\n", err)
			return
		}
		defer conn.Close()

		fmt.Println("Watching transaction notifications (Ctrl-C to stop)...")
		for {
			var n atm.TransactionNotification
			if err := conn.ReadJSON(&n); err != nil {
				fmt.Printf("Feed closed: %v\n", err)
				return
			}
			fmt.Println(n.Message())
		}
	},
}

func init() {
	watchCmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	watchCmd.Flags().IntVar(&pin, "pin", 0, "account PIN")
	watchCmd.MarkFlagRequired("account")
	watchCmd.MarkFlagRequired("pin")
	rootCmd.AddCommand(watchCmd)
}
