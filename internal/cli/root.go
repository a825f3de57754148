// Package cli implements the splitledger command: balances and settlements
// for a group kept in a local TOML snapshot, without a server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

type options struct {
	file   string
	apply  bool
	member string
	now    func() time.Time
}

type addOptions struct {
	description string
	amount      string
	paidBy      string
	split       []string
	category    string
}

// NewRootCmd builds the splitledger command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:           "splitledger",
		Short:         "Group expense balances and settlements",
		Long:          "Compute who owes whom in a group described by a TOML snapshot file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "group.toml", "Group snapshot file")

	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Show member balances, total spend and suggested settlements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBalances(cmd.OutOrStdout(), opts)
		},
	}

	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "Show suggested settlements, optionally recording them as paid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSettle(cmd.OutOrStdout(), opts)
		},
	}
	balancesCmd.Flags().StringVarP(&opts.member, "member", "m", "", "Only print the net balance of this member")
	settleCmd.Flags().BoolVar(&opts.apply, "apply", false, "Append debt cancellations for every settlement to the snapshot")

	add := &addOptions{}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append an expense to the snapshot",
		Example: `  splitledger add -d Dinner -a 90 -p A
  splitledger add -d Taxi -a 12,50 -p B -s A,B -c Transportation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAdd(cmd.OutOrStdout(), opts, add)
		},
	}
	addCmd.Flags().StringVarP(&add.description, "description", "d", "", "What the expense was for")
	addCmd.Flags().StringVarP(&add.amount, "amount", "a", "", "Amount, e.g. 12.34 or 12,34")
	addCmd.Flags().StringVarP(&add.paidBy, "paid-by", "p", "", "Member who paid")
	addCmd.Flags().StringSliceVarP(&add.split, "split", "s", nil, "Members sharing the expense (default: all members)")
	addCmd.Flags().StringVarP(&add.category, "category", "c", models.DefaultCategory, "Expense category")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("paid-by")

	root.AddCommand(balancesCmd, settleCmd, addCmd)
	return root
}

func runBalances(w io.Writer, opts *options) error {
	snap, err := LoadSnapshot(opts.file)
	if err != nil {
		return err
	}

	expenses := snap.CalculatorExpenses()
	balances, settlements, err := calculator.Plan(snap.Members, expenses)
	if err != nil {
		return err
	}

	if opts.member != "" {
		net := money.RoundToCents(calculator.NetBalanceOf(balances, opts.member))
		fmt.Fprintln(w, Indent("%s  %s", opts.member, RenderNet(money.FormatAmount(net, snap.Currency), net)))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderTitle(fmt.Sprintf("%s  %s", strings.ToUpper(snap.Name), snap.Currency)))
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(balances)+2)
	for _, bal := range balances {
		net := money.RoundToCents(bal.NetBalance)
		rows = append(rows, []string{
			bal.MemberName,
			money.FormatAmount(bal.TotalPaid, snap.Currency),
			money.FormatAmount(bal.TotalOwed, snap.Currency),
			RenderNet(money.FormatAmount(net, snap.Currency), net),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total spend", money.FormatAmount(calculator.TotalSpend(expenses), snap.Currency), "", ""})

	fmt.Fprint(w, RenderTable(Table{
		Title:   "Balances",
		Headers: []string{"Member", "Paid", "Owes", "Net"},
		Rows:    rows,
	}))
	fmt.Fprintln(w)

	writeSettlements(w, settlements, snap.Currency)
	return nil
}

func runSettle(w io.Writer, opts *options) error {
	snap, err := LoadSnapshot(opts.file)
	if err != nil {
		return err
	}

	_, settlements, err := calculator.Plan(snap.Members, snap.CalculatorExpenses())
	if err != nil {
		return err
	}

	writeSettlements(w, settlements, snap.Currency)
	if !opts.apply || len(settlements) == 0 {
		return nil
	}

	snap.Append(calculator.RecordAllCancellations(settlements, opts.now()))
	if err := SaveSnapshot(opts.file, snap); err != nil {
		return err
	}

	fmt.Fprintln(w, Indent("Recorded %d settlement(s) in %s", len(settlements), opts.file))
	return nil
}

func runAdd(w io.Writer, opts *options, add *addOptions) error {
	snap, err := LoadSnapshot(opts.file)
	if err != nil {
		return err
	}

	amount, err := money.ParseAmount(add.amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", add.amount, err)
	}
	description := strings.TrimSpace(add.description)
	if description == "" {
		return errors.New("description is required")
	}

	split := trimAll(add.split)
	if len(split) == 0 {
		split = snap.Members
	}
	if add.category == calculator.DebtCancellationCategory {
		return fmt.Errorf("category %q is reserved; use settle --apply", add.category)
	}

	snap.Append([]calculator.Expense{{
		Description:  description,
		Amount:       amount,
		PaidBy:       strings.TrimSpace(add.paidBy),
		SplitBetween: split,
		Category:     add.category,
		Date:         opts.now(),
	}})
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := SaveSnapshot(opts.file, snap); err != nil {
		return err
	}

	fmt.Fprintln(w, Indent("Added %q: %s paid by %s", description, money.FormatAmount(amount, snap.Currency), add.paidBy))
	return nil
}

func writeSettlements(w io.Writer, settlements []calculator.Settlement, currency string) {
	if len(settlements) == 0 {
		fmt.Fprintln(w, Indent("All settled up."))
		return
	}

	rows := make([][]string, len(settlements))
	for i, s := range settlements {
		rows[i] = []string{s.From, s.To, money.FormatAmount(s.Amount, currency)}
	}
	fmt.Fprint(w, RenderTable(Table{
		Title:   "Suggested settlements",
		Headers: []string{"From", "To", "Amount"},
		Rows:    rows,
	}))
}
