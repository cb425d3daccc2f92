package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

func (s *srv) verify(ct *cli.Context) error {
	if err := s.load(ct, false); err != nil {
		return err
	}
	if ct.NArg() < 1 {
		_ = cli.ShowSubcommandHelp(ct)
		return errors.New("缺少必要的参数: draw_id")
	}

	result, err := s.service.Verify(ct.Context, ct.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("抽奖记录: %s\n", result.ID)
	fmt.Printf("记录种子: %s\n", result.FinalSeed)
	fmt.Printf("重算种子: %s\n", result.RecomputedSeed)
	fmt.Printf("记录中奖: %v\n", result.WinningFloors)
	fmt.Printf("重算中奖: %v\n", result.RecomputedWinners)
	if !result.Valid {
		return errors.New("抽奖记录校验失败")
	}
	fmt.Println("校验结果: 一致")
	return nil
}
