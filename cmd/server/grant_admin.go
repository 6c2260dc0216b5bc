package main

import (
	"rpgserver/internal/auth"
	"rpgserver/internal/infrastructure/database"
	"rpgserver/internal/model"
	"rpgserver/internal/service"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newGrantAdminCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <loginId>",
		Short: "授予账户管理员角色",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer database.Close(db)

			accounts := service.NewAccountService(db, auth.NewTokenService(&cfg.Auth), auth.NewBcryptHasher(0), nil, nil, logger)
			if err := accounts.GrantRole(cmd.Context(), args[0], model.RoleAdmin); err != nil {
				return oops.With("loginId", args[0]).Wrap(err)
			}
			cmd.Printf("%s 已设置为管理员\n", args[0])
			return nil
		},
	}
}
