// Package notifier publishes generated Progol tickets.
//
// DryRunNotifier prints the posts it would make; TwitterNotifier posts one
// status per ticket using OAuth1 credentials; TelegramNotifier sends one
// Bot API message per ticket. Multi fans out to several
// notifiers and reports every failure.
package notifier
