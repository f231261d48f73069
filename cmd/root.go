// Package cmd wires the roteirista CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roteirista",
	Short: "Roteirista - assistente de roteiros para Shorts no Telegram",
	Long: `Roteirista é um bot de Telegram para criadores de Shorts.

Mensagens livres viram roteiros gerados por IA; /salvar guarda o último
roteiro no Notion, /carregar lista os roteiros salvos e /carregar_roteiro
exibe um deles pelo número da lista.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
