package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	accountID int64
	pin       int
	amount    string

	toAccountID int64
	toPIN       int
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit an amount into an account",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := terminalID()
		if err != nil {
			fmt.Println(err)
			return
		}
		_, err = post("/terminals/"+id+"/deposit", map[string]any{
			"account_id": accountID,
			"pin":        pin,
			"amount":     amount,
		})
		if err != nil {
			fmt.Printf("Deposit failed: %v\n", err)
			return
		}
		fmt.Printf("Deposited %s into account %d\n", amount, accountID)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw an amount from an account",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := terminalID()
		if err != nil {
			fmt.Println(err)
			return
		}
		_, err = post("/terminals/"+id+"/withdraw", map[string]any{
			"account_id": accountID,
			"pin":        pin,
			"amount":     amount,
		})
		if err != nil {
			fmt.Printf("Withdrawal failed: %v\n", err)
			return
		}
		fmt.Printf("Withdrew %s from account %d\n", amount, accountID)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show an account's balance",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := terminalID()
		if err != nil {
			fmt.Println(err)
			return
		}
		out, err := post("/terminals/"+id+"/balance", map[string]any{
			"account_id": accountID,
			"pin":        pin,
		})
		if err != nil {
			fmt.Printf("Balance check failed: %v\n", err)
			return
		}
		fmt.Printf("Balance of account %d: %s\n", accountID, out["balance"])
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer an amount between two accounts",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := terminalID()
		if err != nil {
			fmt.Println(err)
			return
		}
		_, err = post("/terminals/"+id+"/transfer", map[string]any{
			"from":   map[string]any{"account_id": accountID, "pin": pin},
			"to":     map[string]any{"account_id": toAccountID, "pin": toPIN},
			"amount": amount,
		})
		if err != nil {
			fmt.Printf("Transfer failed: %v\n", err)
			return
		}
		fmt.Printf("Transferred %s from account %d to account %d\n", amount, accountID, toAccountID)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{depositCmd, withdrawCmd, balanceCmd, transferCmd} {
		cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
		cmd.Flags().IntVar(&pin, "pin", 0, "account PIN")
		cmd.MarkFlagRequired("account")
		cmd.MarkFlagRequired("pin")
		rootCmd.AddCommand(cmd)
	}
	depositCmd.Flags().StringVar(&amount, "amount", "", "amount to deposit")
	depositCmd.MarkFlagRequired("amount")
	withdrawCmd.Flags().StringVar(&amount, "amount", "", "amount to withdraw")
	withdrawCmd.MarkFlagRequired("amount")
	transferCmd.Flags().StringVar(&amount, "amount", "", "amount to transfer")
	transferCmd.Flags().Int64Var(&toAccountID, "to-account", 0, "destination account id")
	transferCmd.Flags().IntVar(&toPIN, "to-pin", 0, "destination account PIN")
	transferCmd.MarkFlagRequired("amount")
	transferCmd.MarkFlagRequired("to-account")
	transferCmd.MarkFlagRequired("to-pin")
}
