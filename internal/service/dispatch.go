package service

import (
	"context"
	"encoding/json"
	"fmt"
)

// Execute starts the named command on its own goroutine and reports whether
// the action is known. Unknown actions never touch cb.
func (b *StoreBridge) Execute(ctx context.Context, action string, args json.RawMessage, cb Callback) bool {
	if !Known(action) {
		return false
	}
	go b.Run(ctx, action, args, cb)
	return true
}

func Known(action string) bool {
	switch action {
	case CmdOpenReviewForm,
		CmdInitPurchases,
		CmdCheckPurchasesAvailability,
		CmdGetProducts,
		CmdGetPurchases,
		CmdPurchaseProduct,
		CmdConfirmPurchase,
		CmdDeletePurchase:
		return true
	}
	return false
}

// Run decodes the positional JSON arguments of action and executes it on the
// calling goroutine.
func (b *StoreBridge) Run(ctx context.Context, action string, args json.RawMessage, cb Callback) bool {
	cb = Once(cb, action, b.logger)
	b.logger.Debug("store command", "action", action)

	var params []json.RawMessage
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &params); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
	}

	switch action {
	case CmdOpenReviewForm:
		b.OpenReviewForm(ctx, cb)

	case CmdInitPurchases:
		var in struct {
			ConsoleApplicationID *string `json:"consoleApplicationId"`
			DeeplinkScheme       *string `json:"deeplinkScheme"`
		}
		if err := decodeArg(params, 0, &in); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		if in.ConsoleApplicationID == nil || in.DeeplinkScheme == nil {
			b.fail(cb, action, invalidArgs(action, fmt.Errorf("consoleApplicationId and deeplinkScheme are required")))
			return true
		}
		b.InitPurchases(ctx, InitArgs{
			ConsoleApplicationID: *in.ConsoleApplicationID,
			DeeplinkScheme:       *in.DeeplinkScheme,
		}, cb)

	case CmdCheckPurchasesAvailability:
		b.CheckPurchasesAvailability(ctx, cb)

	case CmdGetProducts:
		var ids []string
		if err := decodeArg(params, 0, &ids); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		b.GetProducts(ctx, ids, cb)

	case CmdGetPurchases:
		b.GetPurchases(ctx, cb)

	case CmdPurchaseProduct:
		var in struct {
			ProductID *string `json:"productId"`
			PurchaseArgs
		}
		if err := decodeArg(params, 0, &in); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		if in.ProductID == nil {
			b.fail(cb, action, invalidArgs(action, fmt.Errorf("productId is required")))
			return true
		}
		in.PurchaseArgs.ProductID = *in.ProductID
		b.PurchaseProduct(ctx, in.PurchaseArgs, cb)

	case CmdConfirmPurchase:
		var purchaseID string
		if err := decodeArg(params, 0, &purchaseID); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		var payload *string
		if err := decodeOptionalArg(params, 1, &payload); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		b.ConfirmPurchase(ctx, purchaseID, payload, cb)

	case CmdDeletePurchase:
		var purchaseID string
		if err := decodeArg(params, 0, &purchaseID); err != nil {
			b.fail(cb, action, invalidArgs(action, err))
			return true
		}
		b.DeletePurchase(ctx, purchaseID, cb)

	default:
		return false
	}
	return true
}

func decodeArg(params []json.RawMessage, i int, dst any) error {
	if i >= len(params) {
		return fmt.Errorf("missing argument %d", i)
	}
	if err := json.Unmarshal(params[i], dst); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}

func decodeOptionalArg(params []json.RawMessage, i int, dst any) error {
	if i >= len(params) {
		return nil
	}
	if err := json.Unmarshal(params[i], dst); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}

func invalidArgs(action string, err error) error {
	return &ValidationError{
		Field:   "args",
		Message: fmt.Sprintf("Invalid arguments for %s: %v", action, err),
	}
}
